package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/driftwatch/driftwatch/internal/errors"
)

// DefaultTimeout is the per-request HTTP timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// Config configures a FileBrowser client.
type Config struct {
	// URL is the base URL of the FileBrowser instance.
	URL string
	// Username and Password authenticate against POST /api/login.
	Username string
	Password string
	// Root is the remote directory the walk starts from (default "/").
	Root string
	// Timeout is the per-request HTTP timeout (default DefaultTimeout).
	Timeout time.Duration
}

// Client is a FileBrowser API client implementing Lister.
type Client struct {
	baseURL  string
	root     string
	username string
	password string
	client   *http.Client
	retryCfg errors.RetryConfig

	mu    sync.Mutex
	token string
}

// Verify interface implementation at compile time
var _ Lister = (*Client)(nil)

// NewClient creates a FileBrowser client. No network calls are made
// until the first listing; authentication is lazy.
func NewClient(cfg Config) *Client {
	if cfg.Root == "" {
		cfg.Root = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		root:     cfg.Root,
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: cfg.Timeout},
		retryCfg: errors.DefaultRetryConfig(),
	}
}

// ListAll walks the remote tree rooted at the configured root and returns
// every entry found, in depth-first listing order. Subtrees that fail to
// list are skipped and reported; a root that fails to list is an error.
func (c *Client) ListAll(ctx context.Context) ([]FileDescriptor, []SubtreeError, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, nil, err
	}

	var files []FileDescriptor
	var failed []SubtreeError
	if err := c.walk(ctx, c.root, true, &files, &failed); err != nil {
		return nil, nil, err
	}
	return files, failed, nil
}

// Login authenticates and stores the session token.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return errors.InternalError("failed to encode login payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return errors.InternalError("failed to create login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.RemoteError(fmt.Sprintf("cannot connect to FileBrowser at %s", c.baseURL), err).
			WithSuggestion("check that the server is running and remote.url is correct")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeAuthFailed,
			fmt.Sprintf("login rejected with status %d", resp.StatusCode), nil).
			WithSuggestion("check remote.username and remote.password")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.RemoteError(
			fmt.Sprintf("login returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.RemoteError("failed to read login response", err)
	}

	token, err := parseToken(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New(errors.ErrCodeAuthFailed, "no token received from login", nil)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// parseToken extracts the session token from a login response.
// Current FileBrowser returns JSON {"token": ...}; older releases return
// the raw token as text/plain.
func parseToken(contentType string, body []byte) (string, error) {
	switch {
	case strings.Contains(contentType, "application/json"):
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", errors.New(errors.ErrCodeAuthFailed, "cannot decode login response", err)
		}
		return payload.Token, nil
	case strings.Contains(contentType, "text/plain"):
		slog.Debug("received plain text token (older FileBrowser format)")
		return strings.TrimSpace(string(body)), nil
	default:
		return "", errors.RemoteError(
			fmt.Sprintf("login returned unexpected content type %q", contentType), nil).
			WithSuggestion("check that remote.url points at a FileBrowser instance")
	}
}

// ensureToken logs in if no token is held yet. Transient connection
// failures are retried with backoff; permanent rejections stop the loop.
func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return nil
	}

	var permanent error
	err := errors.Retry(ctx, c.retryCfg, func() error {
		err := c.Login(ctx)
		if err != nil && !errors.IsRetryable(err) {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}

// walk lists dir and descends into its subdirectories depth-first.
// root failures propagate; deeper failures are collected into failed.
func (c *Client) walk(ctx context.Context, dir string, isRoot bool, files *[]FileDescriptor, failed *[]SubtreeError) error {
	items, err := c.fetchDir(ctx, dir)
	if err != nil {
		if isRoot {
			return err
		}
		slog.Warn("skipping unlistable subtree", "path", dir, "error", err)
		*failed = append(*failed, SubtreeError{Path: dir, Err: err})
		return nil
	}

	for _, item := range items {
		*files = append(*files, FileDescriptor{
			Path:    item.Path,
			Name:    item.Name,
			Size:    item.Size,
			ModTime: parseModified(item.Modified),
			IsDir:   item.IsDir,
		})

		if item.IsDir && item.Path != "/" {
			if err := c.walk(ctx, item.Path, false, files, failed); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchDir fetches one directory listing, refreshing the token once if
// the server reports it expired.
func (c *Client) fetchDir(ctx context.Context, dir string) ([]resourceItem, error) {
	items, err := c.doFetch(ctx, dir)
	if errors.GetCode(err) == errors.ErrCodeAuthFailed {
		if lerr := c.Login(ctx); lerr != nil {
			return nil, lerr
		}
		return c.doFetch(ctx, dir)
	}
	return items, err
}

func (c *Client) doFetch(ctx context.Context, dir string) ([]resourceItem, error) {
	u := c.baseURL + "/api/resources" + escapePath(dir)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.InternalError("failed to create listing request", err)
	}
	c.mu.Lock()
	req.Header.Set("X-Auth", c.token)
	c.mu.Unlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.RemoteError(fmt.Sprintf("listing %s failed", dir), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.New(errors.ErrCodeAuthFailed, "listing rejected: token expired or invalid", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.New(errors.ErrCodeListingFailed,
			fmt.Sprintf("listing %s returned status %d: %s", dir, resp.StatusCode, bytes.TrimSpace(body)), nil)
	}

	var payload resourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.New(errors.ErrCodeListingFailed,
			fmt.Sprintf("cannot decode listing of %s", dir), err)
	}
	return payload.Items, nil
}

// resourceResponse is the shape of GET /api/resources responses.
type resourceResponse struct {
	Items []resourceItem `json:"items"`
}

type resourceItem struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
	IsDir    bool   `json:"isDir"`
}

// parseModified parses the RFC 3339 timestamp FileBrowser reports.
// Unparsable values fall back to now so one bad entry cannot fail a cycle.
func parseModified(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		slog.Debug("unparsable modification time, using now", "value", s)
		return time.Now()
	}
	return t
}

// escapePath escapes each path segment, keeping the separators.
func escapePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
