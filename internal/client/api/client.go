package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI is a single remote call to the action endpoint
type ClientAPI interface {
	// Call sends req and returns the parsed reply.
	// The only error it returns for an unreachable server is *NetworkError;
	// HTTP and parse level problems come back as a Response.
	Call(ctx context.Context, req api.Request) (api.Response, error)
}

// DefaultTimeout is used when the configuration leaves the timeout empty
const DefaultTimeout = 30 * time.Second

// Client is the HTTP transport to the spreadsheet endpoint
type Client struct {
	httpClient *http.Client
	identity   storage.IdentityStorage
	logger     *slog.Logger
	endpoint   string
}

var _ ClientAPI = (*Client)(nil)

// NewClient creates a transport.
// identity is read before every non-login call; nil means anonymous calls
func NewClient(endpoint string, identity storage.IdentityStorage, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint: endpoint,
		identity: identity,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
			// The spreadsheet endpoint redirects to the host serving the result
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// Endpoint returns the remote endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call performs one request to the endpoint
func (c *Client) Call(ctx context.Context, req api.Request) (api.Response, error) {
	action := req.Action()

	payload := req.Clone()
	if action != api.ActionLogin {
		username, lastLogin := c.sessionFields(ctx)
		payload[api.FieldUsername] = username
		payload[api.FieldLastLogin] = lastLogin
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// No Content-Type: browser clients of the same endpoint would send a
	// pre-flight request the spreadsheet platform does not answer

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s request canceled: %w", action, err)
		}
		return nil, &NetworkError{Action: action, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Read the whole body as text
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Action: action, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	parsed := ParseResponse(raw)
	if parsed.IsMalformed() {
		c.logger.WarnContext(ctx, "server returned invalid response",
			"action", action,
			"status", resp.StatusCode)
	}

	return parsed, nil
}

// sessionFields returns the identity pair, or empty strings when nobody is logged in
func (c *Client) sessionFields(ctx context.Context) (string, string) {
	if c.identity == nil {
		return "", ""
	}

	identity, err := c.identity.GetIdentity(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrIdentityNotFound) {
			c.logger.WarnContext(ctx, "failed to read identity", "error", err)
		}
		return "", ""
	}

	return identity.Username, identity.LastLogin
}

// ParseResponse converts a raw body into a Response.
// Anything that is not a JSON object becomes an invalid response carrying a body excerpt.
func ParseResponse(raw []byte) api.Response {
	var parsed api.Response
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		return api.InvalidResponse(string(raw))
	}
	return parsed
}
