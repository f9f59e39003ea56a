// Package symkey defines the identity keys for symbol files and binary
// images, and the deterministic index paths derived from them. The index
// path is the wire contract with symbol servers and the layout of the local
// cache store, so its shape must never change.
package symkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// SymbolKey identifies a symbol (PDB) file by its simple file name, content
// GUID and age counter. Name comparison is case-preserving.
type SymbolKey struct {
	Name string
	GUID uuid.UUID
	Age  uint32
}

// NewSymbolKey builds a symbol identity from a simple file name. The caller
// is responsible for reducing a full path to its base name first.
func NewSymbolKey(name string, guid uuid.UUID, age uint32) SymbolKey {
	return SymbolKey{Name: name, GUID: guid, Age: age}
}

// IndexPath returns the server/cache-relative lookup path for this identity:
// <name>/<guid hex without separators><age hex>/<name>.
func (k SymbolKey) IndexPath() string {
	hex := strings.ReplaceAll(k.GUID.String(), "-", "")
	return path.Join(k.Name, fmt.Sprintf("%s%x", hex, k.Age), k.Name)
}

func (k SymbolKey) String() string {
	return fmt.Sprintf("%s (guid=%s age=%d)", k.Name, k.GUID, k.Age)
}

// BinaryKey identifies an executable image by its lower-cased file name,
// build timestamp and image size.
type BinaryKey struct {
	Name      string
	TimeStamp uint32
	ImageSize uint32
}

// NewBinaryKey builds a binary identity. The file name is lower-cased so
// that lookups are case-insensitive.
func NewBinaryKey(name string, timeStamp, imageSize uint32) BinaryKey {
	return BinaryKey{Name: strings.ToLower(name), TimeStamp: timeStamp, ImageSize: imageSize}
}

// IndexPath returns the server/cache-relative lookup path for this identity:
// <name>/<timestamp hex><size hex>/<name>.
func (k BinaryKey) IndexPath() string {
	return path.Join(k.Name, fmt.Sprintf("%x%x", k.TimeStamp, k.ImageSize), k.Name)
}

func (k BinaryKey) String() string {
	return fmt.Sprintf("%s (timestamp=%x size=%x)", k.Name, k.TimeStamp, k.ImageSize)
}
