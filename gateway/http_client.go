package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultDialTimeout    = 10 * time.Second
	userAgent             = "Arpay/1.0"
)

// HTTPRequest is a standardized request to a provider endpoint
type HTTPRequest struct {
	Method      string
	Endpoint    string
	Headers     map[string]string
	Body        any
	FormData    map[string]string
	QueryParams map[string]string
}

// HTTPResponse is a standardized provider response. Non-2xx status
// codes are not errors here; providers signal declines in the body and
// the adapters classify them.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Map decodes the body as a JSON object. Bodies that are not JSON
// objects yield an empty map, never an error.
func (r *HTTPResponse) Map() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// HTTPClient performs provider HTTP calls with shared timeouts and
// headers. Transport failures come back as *NetworkError; everything
// the provider actually answered is returned as a response.
type HTTPClient struct {
	gatewayName string
	baseURL     string
	client      *http.Client
}

// NewHTTPClient creates a client for the given gateway and base URL
func NewHTTPClient(gatewayName, baseURL string) *HTTPClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: defaultDialTimeout,
		}).DialContext,
	}

	return &HTTPClient{
		gatewayName: gatewayName,
		baseURL:     baseURL,
		client: &http.Client{
			Timeout:   defaultRequestTimeout,
			Transport: transport,
		},
	}
}

// SetBaseURL switches the base URL, typically after Configure resolves
// the sandbox or production environment.
func (c *HTTPClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Post sends a POST request. The body is JSON encoded unless FormData
// is set, in which case it is form encoded.
func (c *HTTPClient) Post(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	req.Method = http.MethodPost
	if len(req.FormData) > 0 {
		return c.send(ctx, req, "application/x-www-form-urlencoded")
	}
	return c.send(ctx, req, "application/json")
}

// Get sends a GET request with the given query parameters
func (c *HTTPClient) Get(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	req.Method = http.MethodGet
	return c.send(ctx, req, "")
}

func (c *HTTPClient) send(ctx context.Context, req *HTTPRequest, contentType string) (*HTTPResponse, error) {
	fullURL := c.buildURL(req.Endpoint, req.QueryParams)

	var body io.Reader
	switch contentType {
	case "application/x-www-form-urlencoded":
		form := url.Values{}
		for key, value := range req.FormData {
			form.Set(key, value)
		}
		body = strings.NewReader(form.Encode())
	case "application/json":
		if req.Body != nil {
			if raw, ok := req.Body.(string); ok {
				body = strings.NewReader(raw)
			} else {
				jsonData, err := json.Marshal(req.Body)
				if err != nil {
					return nil, &NetworkError{Gateway: c.gatewayName, Err: err}
				}
				body = bytes.NewReader(jsonData)
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, &NetworkError{Gateway: c.gatewayName, Err: err}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Gateway: c.gatewayName, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Gateway: c.gatewayName, Err: err}
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// MarshalBody returns the JSON encoding of a request body. Some
// gateways sign the exact bytes they send, so they marshal once and
// pass the string through Post.
func MarshalBody(body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *HTTPClient) buildURL(endpoint string, queryParams map[string]string) string {
	fullURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		fullURL = joinURL(c.baseURL, endpoint)
	}

	if len(queryParams) > 0 {
		u, err := url.Parse(fullURL)
		if err != nil {
			return fullURL
		}
		q := u.Query()
		for key, value := range queryParams {
			q.Set(key, value)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	return fullURL
}

func joinURL(base, endpoint string) string {
	switch {
	case strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/"):
		return base + endpoint[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/"):
		return base + "/" + endpoint
	default:
		return base + endpoint
	}
}
