package connectivity

import (
	"context"
	"net/http"
	"time"
)

// HTTPProber считает endpoint доступным, если на HEAD пришел любой HTTP ответ
type HTTPProber struct {
	client   *http.Client
	endpoint string
}

// NewHTTPProber creates a prober for endpoint with the given timeout
func NewHTTPProber(endpoint string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe implements Prober
func (p *HTTPProber) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()

	return true
}
