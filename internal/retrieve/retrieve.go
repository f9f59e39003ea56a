// Package retrieve implements the symbol-server retrieval strategy for a
// single path element. Given an index path it tries, in order: the
// compressed artifact, the uncompressed artifact, and a file.ptr
// redirection. The local cache is consulted before each attempt, so a warm
// cache performs no network activity at all.
package retrieve

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"

	"symsrv/internal/cachestore"
	"symsrv/internal/transport"
)

// Pointer file records: "PATH:<filesystem path>" redirects to a local file,
// "MSG:<text>" is a server-side diagnostic and always a miss.
const (
	ptrFileName   = "file.ptr"
	ptrPathPrefix = "PATH:"
	ptrMsgPrefix  = "MSG:"
)

// Recorder is notified after an artifact has been placed in the cache.
// Used to keep the cache inventory; failures there never affect resolution.
type Recorder func(indexPath, source string, sizeBytes int64)

// Retriever runs the retrieval strategy against one server target.
type Retriever struct {
	fetcher  transport.Fetcher
	store    *cachestore.Store
	logger   *slog.Logger
	recorder Recorder
}

// New creates a retriever for one (target, cache) pair.
func New(fetcher transport.Fetcher, store *cachestore.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Retriever{fetcher: fetcher, store: store, logger: logger}
}

// WithRecorder attaches an inventory recorder.
func (r *Retriever) WithRecorder(rec Recorder) *Retriever {
	r.recorder = rec
	return r
}

// Get attempts to produce the artifact for indexPath in the local cache.
// It returns the local path and true on success; false means this element
// is a confirmed miss and the search should continue elsewhere.
func (r *Retriever) Get(ctx context.Context, indexPath string) (string, bool) {
	if p, ok := r.store.Exists(indexPath); ok {
		return p, true
	}
	if p, ok := r.compressed(ctx, indexPath); ok {
		return p, true
	}

	if p, ok := r.store.Exists(indexPath); ok {
		return p, true
	}
	if p, ok := r.direct(ctx, indexPath); ok {
		return p, true
	}

	if p, ok := r.store.Exists(indexPath); ok {
		return p, true
	}
	return r.pointer(ctx, indexPath)
}

// compressed fetches the trailing-underscore variant of the artifact into a
// temporary file, expands it into the cache, and deletes the temporary.
// Expansion failure is swallowed so the caller falls through to a direct
// fetch.
func (r *Retriever) compressed(ctx context.Context, indexPath string) (string, bool) {
	rc, err := r.fetcher.Fetch(ctx, compressedName(indexPath))
	if err != nil {
		return "", false
	}
	defer func() { _ = rc.Close() }()

	tmp, err := os.CreateTemp("", "symsrv-*.compressed")
	if err != nil {
		r.logger.Debug("Failed to stage compressed artifact", "error", err)
		return "", false
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		r.logger.Debug("Failed to download compressed artifact", "index", indexPath, "error", err)
		return "", false
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = tmp.Close()
		return "", false
	}

	zr, err := gzip.NewReader(tmp)
	if err != nil {
		_ = tmp.Close()
		r.logger.Debug("Compressed artifact is not expandable", "index", indexPath, "error", err)
		return "", false
	}

	final, err := r.store.Materialize(indexPath, zr)
	_ = zr.Close()
	_ = tmp.Close()
	if err != nil {
		r.logger.Debug("Failed to expand compressed artifact", "index", indexPath, "error", err)
		return "", false
	}

	r.logger.Debug("Retrieved compressed artifact", "index", indexPath, "path", final)
	r.record(indexPath, "compressed", final)
	return final, true
}

// direct streams the artifact straight into the cache.
func (r *Retriever) direct(ctx context.Context, indexPath string) (string, bool) {
	rc, err := r.fetcher.Fetch(ctx, indexPath)
	if err != nil {
		return "", false
	}
	defer func() { _ = rc.Close() }()

	final, err := r.store.Materialize(indexPath, rc)
	if err != nil {
		r.logger.Debug("Failed to download artifact", "index", indexPath, "error", err)
		return "", false
	}

	r.logger.Debug("Retrieved artifact", "index", indexPath, "path", final)
	r.record(indexPath, "direct", final)
	return final, true
}

// pointer follows a file.ptr redirection next to the artifact.
func (r *Retriever) pointer(ctx context.Context, indexPath string) (string, bool) {
	ptrRel := path.Join(path.Dir(indexPath), ptrFileName)

	text, err := transport.FetchText(ctx, r.fetcher, ptrRel)
	if err != nil {
		return "", false
	}

	switch {
	case strings.HasPrefix(text, ptrPathPrefix):
		target := strings.TrimSpace(strings.TrimPrefix(text, ptrPathPrefix))
		if target == "" {
			return "", false
		}
		final, err := r.store.MaterializeFile(indexPath, target)
		if err != nil {
			r.logger.Debug("Pointer target unavailable", "index", indexPath, "target", target, "error", err)
			return "", false
		}
		r.logger.Debug("Retrieved artifact via pointer", "index", indexPath, "target", target)
		r.record(indexPath, "pointer", final)
		return final, true
	case strings.HasPrefix(text, ptrMsgPrefix):
		r.logger.Debug("Server pointer message", "index", indexPath,
			"message", strings.TrimSpace(strings.TrimPrefix(text, ptrMsgPrefix)))
		return "", false
	default:
		return "", false
	}
}

func (r *Retriever) record(indexPath, source, final string) {
	if r.recorder == nil {
		return
	}
	var size int64
	if info, err := os.Stat(final); err == nil {
		size = info.Size()
	}
	r.recorder(indexPath, source, size)
}

// compressedName replaces the final character of the index path with an
// underscore, the symbol-server convention for compressed artifacts.
func compressedName(indexPath string) string {
	return indexPath[:len(indexPath)-1] + "_"
}
