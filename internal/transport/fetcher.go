// Package transport provides the fetch capability used by the retrieval
// strategy. A fetch is polymorphic over two variants: HTTP for remote
// symbol servers and plain file reads for local shares and directories.
// Every failure mode that means "the artifact is not there" (404, timeout,
// unreachable host, missing file) is reported as ErrNotFound so the caller
// can treat it as a miss and move on.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UserAgent is the fixed identifying client string sent with every request.
const UserAgent = "symsrv-client/1.0"

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 10 * time.Second

// maxTextSize limits pointer-file reads.
const maxTextSize = 1 << 20

// ErrNotFound marks a miss: the artifact does not exist at the target, or
// the target could not be reached within the timeout.
var ErrNotFound = errors.New("artifact not found")

// IsNotFound reports whether err represents a fetch miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Fetcher opens artifacts below a single target.
type Fetcher interface {
	// Fetch opens the artifact at rel, a forward-slash separated path
	// relative to the fetcher's target. The caller must close the reader.
	Fetch(ctx context.Context, rel string) (io.ReadCloser, error)
}

// ForTarget selects the fetch variant for a path element target: HTTP for
// http/https URLs, local file reads for everything else (UNC shares and
// plain directories).
func ForTarget(target string, client *http.Client) Fetcher {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPFetcher(target, client)
	}
	return NewFileFetcher(target)
}

// HTTPFetcher fetches artifacts from a remote symbol server via GET.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher creates an HTTP fetcher for the given base URL. A nil
// client gets the default bounded-timeout client.
func NewHTTPFetcher(base string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPFetcher{
		base:   strings.TrimRight(base, "/"),
		client: client,
	}
}

// Fetch performs a GET for <base>/<rel>. Non-success responses and network
// failures (including timeouts) wrap ErrNotFound.
func (f *HTTPFetcher) Fetch(ctx context.Context, rel string) (io.ReadCloser, error) {
	u := f.base + "/" + escapePath(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request for %s: %v", ErrNotFound, u, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNotFound, u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: HTTP %d", ErrNotFound, u, resp.StatusCode)
	}

	return resp.Body, nil
}

// escapePath escapes each segment of a forward-slash path for use in a URL.
func escapePath(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// FileFetcher fetches artifacts from a local directory or file share.
type FileFetcher struct {
	root string
}

// NewFileFetcher creates a fetcher rooted at a directory or share path.
func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{root: root}
}

// Fetch opens the file at <root>/<rel>. A missing or unreadable file wraps
// ErrNotFound.
func (f *FileFetcher) Fetch(_ context.Context, rel string) (io.ReadCloser, error) {
	full := filepath.Join(f.root, filepath.FromSlash(rel))

	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrNotFound, full, err)
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, full)
	}

	return file, nil
}

// FetchText fetches a small artifact (a pointer file) and returns its
// trimmed text content.
func FetchText(ctx context.Context, f Fetcher, rel string) (string, error) {
	rc, err := f.Fetch(ctx, rel)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxTextSize))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrNotFound, rel, err)
	}

	return strings.TrimSpace(string(data)), nil
}
