package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const STATUS_SUCCESS Status = "SUCCESS"
const STATUS_EXISTS Status = "EXISTS"
const STATUS_ERROR Status = "ERROR"

const DEFAULT_CALL_TIMEOUT = 30 * time.Second

// Response is the tagged result every remote call decodes into. The
// loose shape heuristics live here, at the transport boundary, so step
// handlers branch on Status instead of inspecting raw payloads.
type Response struct {
	Status  Status
	Payload any
	Message string
}

// TransportError reports a call that never completed: dial failure,
// timeout, non-2xx status or an undecodable body. It is distinct from
// a remote ERROR response so callers can tell "remote said no" from
// "call never completed".
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc call %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client interface {
	Call(ctx context.Context, method string, args ...any) (*Response, error)
}

var _ Client = new(HTTPClient)

// HTTPClient posts calls as JSON to a single bound endpoint. The
// credential pair is prepended to the positional params of every call.
type HTTPClient struct {
	endpoint string
	credID   string
	credKey  string
	timeout  time.Duration
	client   *http.Client
}

func NewHTTPClient(endpoint string, credID string, credKey string, timeout time.Duration) (*HTTPClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %s", endpoint)
	}
	if timeout <= 0 {
		timeout = DEFAULT_CALL_TIMEOUT
	}
	return &HTTPClient{
		endpoint: endpoint,
		credID:   credID,
		credKey:  credKey,
		timeout:  timeout,
		client:   &http.Client{},
	}, nil
}

type callRequest struct {
	Id     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

func (c *HTTPClient) Call(ctx context.Context, method string, args ...any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := make([]any, 0, len(args)+2)
	params = append(params, c.credID, c.credKey)
	params = append(params, args...)
	body, err := json.Marshal(callRequest{Id: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return classify(decoded), nil
}

// classify maps the remote's loosely shaped payloads onto a tagged
// response. Unrecognized object shapes read as EXISTS, which keeps the
// workflow moving forward instead of failing on a surprise shape.
func classify(decoded any) *Response {
	switch v := decoded.(type) {
	case map[string]any:
		if msg, ok := v["error"]; ok {
			return &Response{Status: STATUS_ERROR, Message: fmt.Sprintf("%v", msg)}
		}
		if status, ok := v["status"].(string); ok {
			if strings.EqualFold(status, "exists") {
				return &Response{Status: STATUS_EXISTS}
			}
			if strings.EqualFold(status, "ok") || strings.EqualFold(status, "success") {
				return &Response{Status: STATUS_SUCCESS, Payload: v}
			}
		}
		if data, ok := v["data"]; ok {
			return &Response{Status: STATUS_SUCCESS, Payload: data}
		}
		return &Response{Status: STATUS_EXISTS}
	case nil:
		return &Response{Status: STATUS_EXISTS}
	default:
		return &Response{Status: STATUS_SUCCESS, Payload: decoded}
	}
}
