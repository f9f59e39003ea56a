package validate

import (
	"debug/pe"
	"fmt"
)

// PEImageInfo reads the build timestamp and image size from a PE file's
// headers. Any unreadable or non-PE file returns an error; callers treat
// that as a validation miss, never as fatal.
func PEImageInfo(path string) (timeStamp, imageSize uint32, err error) {
	f, err := pe.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse PE headers: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return f.FileHeader.TimeDateStamp, oh.SizeOfImage, nil
	case *pe.OptionalHeader64:
		return f.FileHeader.TimeDateStamp, oh.SizeOfImage, nil
	default:
		return 0, 0, fmt.Errorf("%s has no optional header", path)
	}
}
