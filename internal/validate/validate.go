// Package validate confirms that a candidate file on disk matches a
// requested identity. Mismatches and unreadable files are misses, never
// errors: the search simply continues at the next path element.
package validate

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// SymbolFunc checks a symbol file candidate against (guid, age).
type SymbolFunc func(path string, guid uuid.UUID, age uint32) bool

// BinaryFunc checks a binary candidate against (timeStamp, imageSize).
// With checkProperties false, existence alone suffices.
type BinaryFunc func(path string, timeStamp, imageSize uint32, checkProperties bool) bool

// Symbol returns the default symbol validator, which reads the embedded
// GUID and age from the candidate and compares structurally.
func Symbol(logger *slog.Logger) SymbolFunc {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(path string, guid uuid.UUID, age uint32) bool {
		got, gotAge, err := PDBIdentity(path)
		if err != nil {
			logger.Debug("Symbol candidate unreadable", "path", path, "error", err)
			return false
		}
		if got != guid || gotAge != age {
			logger.Debug("Symbol identity mismatch",
				"path", path,
				"want_guid", guid, "want_age", age,
				"got_guid", got, "got_age", gotAge,
			)
			return false
		}
		return true
	}
}

// Binary returns the default binary validator, which reads the PE header's
// build timestamp and image size.
func Binary(logger *slog.Logger) BinaryFunc {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(path string, timeStamp, imageSize uint32, checkProperties bool) bool {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return false
		}
		if !checkProperties {
			return true
		}
		gotTS, gotSize, err := PEImageInfo(path)
		if err != nil {
			logger.Debug("Binary candidate unreadable", "path", path, "error", err)
			return false
		}
		if gotTS != timeStamp || gotSize != imageSize {
			logger.Debug("Binary identity mismatch",
				"path", path,
				"want_timestamp", timeStamp, "want_size", imageSize,
				"got_timestamp", gotTS, "got_size", gotSize,
			)
			return false
		}
		return true
	}
}
