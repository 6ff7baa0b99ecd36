package shared

import (
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NewUpstreamHTTPClient creates an HTTP client with connection pooling and
// TCP keep-alive for long-lived upstream API sessions.
func NewUpstreamHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:       http.ProxyFromEnvironment,
			DialContext: dialer.DialContext,

			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,

			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}

	logrus.WithFields(logrus.Fields{
		"component": "HTTPClient",
		"timeout":   timeout,
	}).Debug("Created upstream HTTP client")

	return client
}

// CloseIdleConnections releases pooled connections held by client
func CloseIdleConnections(client *http.Client) {
	if client == nil {
		return
	}
	client.CloseIdleConnections()
}
