package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds outbound calls to external collaborators. The
// oracle may legitimately take this long on large merged tables.
const DefaultTimeout = 120 * time.Second

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
