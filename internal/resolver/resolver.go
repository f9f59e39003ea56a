// Package resolver orchestrates symbol and binary resolution: positive
// cache, negative cache, then the search-path elements in order, with
// validation or server retrieval per element. The engine owns its caches;
// construct a fresh engine for an isolated cache lifetime.
package resolver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"symsrv/internal/cachestore"
	"symsrv/internal/errors"
	"symsrv/internal/retrieve"
	"symsrv/internal/searchpath"
	"symsrv/internal/symkey"
	"symsrv/internal/transport"
	"symsrv/internal/validate"
)

// Options configures a resolution engine.
type Options struct {
	// SearchPath is the search path configuration string. Ignored when
	// Elements is set.
	SearchPath string

	// Elements is a pre-parsed search path.
	Elements []searchpath.Element

	// CacheDir is the default local cache for server elements without a
	// cache override. Defaults to <os temp>/symsrv.
	CacheDir string

	// Timeout bounds each HTTP fetch attempt.
	Timeout time.Duration

	Logger *slog.Logger

	// ValidateSymbol and ValidateBinary replace the default file-format
	// validators. Used by tests.
	ValidateSymbol validate.SymbolFunc
	ValidateBinary validate.BinaryFunc

	// Recorder is notified of every artifact materialized into the cache.
	Recorder retrieve.Recorder
}

// Engine resolves identities to validated local paths.
type Engine struct {
	elements       []searchpath.Element
	cacheDir       string
	client         *http.Client
	logger         *slog.Logger
	validateSymbol validate.SymbolFunc
	validateBinary validate.BinaryFunc
	recorder       retrieve.Recorder
	memo           *memo
}

// New creates an engine with empty result caches.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	elements := opts.Elements
	if elements == nil {
		elements = searchpath.Parse(opts.SearchPath)
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "symsrv")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}

	validateSymbol := opts.ValidateSymbol
	if validateSymbol == nil {
		validateSymbol = validate.Symbol(logger)
	}
	validateBinary := opts.ValidateBinary
	if validateBinary == nil {
		validateBinary = validate.Binary(logger)
	}

	return &Engine{
		elements:       elements,
		cacheDir:       cacheDir,
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
		validateSymbol: validateSymbol,
		validateBinary: validateBinary,
		recorder:       opts.Recorder,
		memo:           newMemo(),
	}
}

// FindPDB locates a symbol file matching (name, guid, age) and returns a
// validated local path. A NotFound error means every element was exhausted;
// an InvalidRequest error means the request itself was malformed.
//
// Candidate policy per source:
//
//	caller-supplied path   validated, returned without touching caches
//	directory element      validated against (guid, age), always
//	server element         trusted by construction (content-addressed fetch)
func (e *Engine) FindPDB(ctx context.Context, name string, guid uuid.UUID, age uint32) (string, error) {
	if name == "" {
		return "", errors.New(errors.InvalidRequest, "symbol file name is empty")
	}

	simple := filepath.Base(name)
	if simple != name && e.validateSymbol(name, guid, age) {
		e.logger.Debug("Resolved symbol at caller-supplied path", "path", name)
		return name, nil
	}

	key := symkey.NewSymbolKey(simple, guid, age)
	if path, ok := e.memo.lookupFound(key); ok {
		return path, nil
	}
	if e.memo.lookupAbsent(key) {
		return "", e.notFound(key.String())
	}

	indexPath := key.IndexPath()
	for _, el := range e.elements {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if el.IsServer() {
			if path, ok := e.retriever(el).Get(ctx, indexPath); ok {
				e.memo.addFound(key, path)
				e.logger.Info("Resolved symbol from server", "key", key.String(), "server", el.Target, "path", path)
				return path, nil
			}
			continue
		}

		candidate := filepath.Join(el.Dir, simple)
		if e.validateSymbol(candidate, guid, age) {
			e.memo.addFound(key, candidate)
			e.logger.Info("Resolved symbol from directory", "key", key.String(), "path", candidate)
			return candidate, nil
		}
	}

	e.memo.addAbsent(key)
	e.logger.Debug("Symbol not found on any element", "key", key.String())
	return "", e.notFound(key.String())
}

// FindBinary locates an executable image matching (name, timeStamp,
// imageSize). The caller-supplied path is probed first: binaries are
// frequently still present at their original build location.
//
// Candidate policy per source:
//
//	caller-supplied path   exists, plus header match when checkProperties
//	directory element      exists, plus header match when checkProperties
//	server element         trusted by construction
func (e *Engine) FindBinary(ctx context.Context, name string, timeStamp, imageSize uint32, checkProperties bool) (string, error) {
	if name == "" {
		return "", errors.New(errors.InvalidRequest, "binary file name is empty")
	}

	if e.validateBinary(name, timeStamp, imageSize, checkProperties) {
		e.logger.Debug("Resolved binary at caller-supplied path", "path", name)
		return name, nil
	}

	simple := strings.ToLower(filepath.Base(name))
	key := symkey.NewBinaryKey(simple, timeStamp, imageSize)
	if path, ok := e.memo.lookupFound(key); ok {
		return path, nil
	}
	if e.memo.lookupAbsent(key) {
		return "", e.notFound(key.String())
	}

	indexPath := key.IndexPath()
	for _, el := range e.elements {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if el.IsServer() {
			if path, ok := e.retriever(el).Get(ctx, indexPath); ok {
				e.memo.addFound(key, path)
				e.logger.Info("Resolved binary from server", "key", key.String(), "server", el.Target, "path", path)
				return path, nil
			}
			continue
		}

		candidate := filepath.Join(el.Dir, simple)
		if e.validateBinary(candidate, timeStamp, imageSize, checkProperties) {
			e.memo.addFound(key, candidate)
			e.logger.Info("Resolved binary from directory", "key", key.String(), "path", candidate)
			return candidate, nil
		}
	}

	e.memo.addAbsent(key)
	e.logger.Debug("Binary not found on any element", "key", key.String())
	return "", e.notFound(key.String())
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return e.memo.snapshot()
}

// Elements returns the parsed search path, in resolution order.
func (e *Engine) Elements() []searchpath.Element {
	return e.elements
}

// CacheDir returns the default cache directory for server elements.
func (e *Engine) CacheDir() string {
	return e.cacheDir
}

func (e *Engine) retriever(el searchpath.Element) *retrieve.Retriever {
	cache := el.Cache
	if cache == "" {
		cache = e.cacheDir
	}
	store := cachestore.New(cache, e.logger)
	fetcher := transport.ForTarget(el.Target, e.client)
	return retrieve.New(fetcher, store, e.logger).WithRecorder(e.recorder)
}

func (e *Engine) notFound(key string) error {
	return errors.Newf(errors.NotFound, "%s not found on any search path element", key)
}
