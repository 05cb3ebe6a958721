package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/http/response"
)

// EnvelopeTransformer wraps every JSON body huma writes. Errors become the
// failure envelope; everything else lands under "data". Raw []byte bodies
// (exports) and streams bypass transformers and are sent as-is.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.WrapError(body.Code, body.Message, body.Details), nil
	case response.Envelope, response.ErrorEnvelope:
		return v, nil
	case huma.StatusError:
		return response.WrapError(statusToCode(body.GetStatus()), body.Error(), nil), nil
	default:
		return response.Wrap(v), nil
	}
}
