package api

import (
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// schemaNamer names OpenAPI schemas after their Go type. When two packages
// export the same type name (reader.View and lore.View), the type registered
// second is prefixed with its package name, e.g. "LoreView".
type schemaNamer struct {
	mu     sync.Mutex
	owners map[string]reflect.Type
}

func newSchemaRegistry() huma.Registry {
	n := &schemaNamer{owners: make(map[string]reflect.Type)}
	return huma.NewMapRegistry("#/components/schemas/", n.name)
}

func (n *schemaNamer) name(t reflect.Type, hint string) string {
	name := huma.DefaultSchemaNamer(t, hint)

	base := t
	for base.Kind() == reflect.Pointer || base.Kind() == reflect.Slice || base.Kind() == reflect.Array {
		base = base.Elem()
	}
	if base.PkgPath() == "" || base.Name() == "" {
		return name
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	owner, taken := n.owners[name]
	if !taken {
		n.owners[name] = base
		return name
	}
	if owner == base {
		return name
	}

	pkg := path.Base(base.PkgPath())
	qualified := strings.ToUpper(pkg[:1]) + pkg[1:] + name
	n.owners[qualified] = base
	return qualified
}
