package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/menta2k/image-cropper/pkg/client"
	"github.com/menta2k/image-cropper/pkg/types"
)

var _ client.TransformService = (*Client)(nil)

// ExampleImageID names the bundled sample image. The service serves it but
// refuses to transform it.
const ExampleImageID = "example"

// DefaultTimeout bounds a single request when the context has no deadline
const DefaultTimeout = 30 * time.Second

var (
	// ErrRemoteRequestFailed matches every *StatusError
	ErrRemoteRequestFailed = errors.New("remote request failed")
	// ErrMalformedResponse is returned for a 2xx response missing required fields
	ErrMalformedResponse = errors.New("invalid image info")
	// ErrEmptyCollection is returned by Iter when the service has no images
	ErrEmptyCollection = errors.New("image collection is empty")
)

// StatusError is a non-2xx response from the transform service
type StatusError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	return e.StatusText
}

// Is makes errors.Is(err, ErrRemoteRequestFailed) hold for any StatusError
func (e *StatusError) Is(target error) bool {
	return target == ErrRemoteRequestFailed
}

// Client talks to the transform service over HTTP. It is safe for
// concurrent use and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout used when the context has no deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the service rooted at baseURL. An empty
// baseURL yields root-relative paths, which only work behind a proxy.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL != "" {
		parsedURL, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return nil, fmt.Errorf("unsupported URL scheme: %q (only http and https are supported)", parsedURL.Scheme)
		}
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		userAgent:  "image-cropper/1.0",
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ImageURL returns the URL serving the raw bytes of an image
func (c *Client) ImageURL(imageID string) string {
	return c.baseURL + "/image/" + url.PathEscape(imageID)
}

// Iter returns the image at position index of the collection along with its
// neighbours. The service clamps out-of-range indexes.
func (c *Client) Iter(ctx context.Context, index int) (*types.ImageInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/iter/"+strconv.Itoa(index), nil)
	if err != nil {
		return nil, err
	}
	return parseImageInfo(body)
}

// FetchImage downloads the raw bytes of an image
func (c *Client) FetchImage(ctx context.Context, imageID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/image/"+url.PathEscape(imageID), nil)
}

// Transform posts payload as JSON to the transform endpoint of an image and
// returns the response body, which the service uses to identify the result.
func (c *Client) Transform(ctx context.Context, imageID string, payload any) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/tran/"+url.PathEscape(imageID), jsonData)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
		}
	}

	return body, nil
}

// statusText strips the numeric code from resp.Status
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return text
}

var requiredInfoKeys = []string{"current", "prev", "next", "total"}

func parseImageInfo(body []byte) (*types.ImageInfo, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrMalformedResponse, err, body)
	}

	for _, key := range requiredInfoKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q in %s", ErrMalformedResponse, key, body)
		}
	}

	var info types.ImageInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrMalformedResponse, err, body)
	}

	if string(raw["total"]) == "null" {
		return nil, fmt.Errorf("%w: null total", ErrMalformedResponse)
	}
	if string(raw["current"]) == "null" {
		if info.Total == 0 {
			return nil, ErrEmptyCollection
		}
		return nil, fmt.Errorf("%w: null current with total %d", ErrMalformedResponse, info.Total)
	}
	// An empty id addresses no image route
	if info.Current == "" {
		return nil, fmt.Errorf("%w: empty current image id", ErrMalformedResponse)
	}

	return &info, nil
}
