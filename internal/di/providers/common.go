// Package providers contains dependency injection providers for the Chronicles server.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// inboxPerMinute paces imports from the watched inbox directory.
	inboxPerMinute = 30
	inboxBurst     = 5
)
