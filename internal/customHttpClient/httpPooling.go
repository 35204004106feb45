package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
)

// sharedTransport is reused by every outbound client so storage, email, LLM and
// scraper calls keep warm connections.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client on the shared transport. A zero timeout
// falls back to the default outbound timeout.
func NewPooledClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = config.OutboundHTTPTimeout
	}
	return &http.Client{
		Transport: sharedTransport,
		Timeout:   timeout,
	}
}
