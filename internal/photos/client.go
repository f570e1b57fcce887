package photos

import (
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
)

// ErrNotFound is returned by FetchPhoto when the server has no such photo.
var ErrNotFound = errors.New("photo not found")

// PageQuery selects one page of a listing.
type PageQuery struct {
	Params Params
	Limit  int
	Offset int
}

// PageFetcher fetches one page of photos. A page shorter than the requested
// limit is the only end-of-data signal.
type PageFetcher interface {
	FetchPhotos(ctx context.Context, query PageQuery) ([]Photo, error)
}

// Fetcher is the full read surface of the gallery API.
type Fetcher interface {
	PageFetcher
	FetchPhoto(ctx context.Context, id string) (Photo, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// APIError is a non-2xx response from the gallery API.
type APIError struct {
	Path    string
	Status  int
	Message string // server supplied, may be empty
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// ErrorMessage returns the text to show a user for err: the server's own
// message when it sent one, otherwise the error text, otherwise fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// Client talks to the gallery HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultServerURL = "http://127.0.0.1:3000"
	defaultUserAgent = "loupe/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 64 * 1024
)

// NewClient builds a Client for the server at serverURL (host:port or URL).
func NewClient(serverURL string) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchPhotos retrieves one page of a listing.
func (c *Client) FetchPhotos(ctx context.Context, query PageQuery) ([]Photo, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if query.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	values := query.Params.Values()
	values.Set("limit", strconv.Itoa(query.Limit))
	values.Set("offset", strconv.Itoa(max(query.Offset, 0)))
	rel := &url.URL{Path: "/api/photos", RawQuery: values.Encode()}
	var payload ListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	return DeserializeAll(payload.Data), nil
}

// FetchPhoto retrieves a single photo. A 404 is reported as ErrNotFound.
func (c *Client) FetchPhoto(ctx context.Context, id string) (Photo, error) {
	if c == nil {
		return Photo{}, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Photo{}, fmt.Errorf("photo id required")
	}
	var payload APIPhoto
	if err := c.do(ctx, http.MethodGet, "/api/photos/"+id, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Photo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Photo{}, err
	}
	return payload.Deserialize(), nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{
			Path:    rel.Path,
			Status:  resp.StatusCode,
			Message: errorBodyMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorBodyMessage extracts the message of a JSON error body such as
// {"statusCode":404,"statusMessage":"Not Found","message":"Photo not found"}.
func errorBodyMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message       string `json:"message"`
		StatusMessage string `json:"statusMessage"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.StatusMessage)
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server_url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server_url %q: missing host", serverURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
