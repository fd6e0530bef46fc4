package config

import (
	"net/http"
	"time"

	"github.com/knadh/koanf/v2"
)

const defaultHTTPTimeout = 10 * time.Second

// NewHTTPClient builds the shared HTTP client. The client timeout is the
// only timeout in the system; the transport classifies it as transient.
func NewHTTPClient(koanf *koanf.Koanf) *http.Client {
	timeout := koanf.Duration("SIKDAN_HTTP_TIMEOUT")
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &http.Client{
		Timeout: timeout,
	}
}
