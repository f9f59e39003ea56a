package validate

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// msfMagic is the MSF 7.0 superblock signature every PDB starts with.
const msfMagic = "Microsoft C/C++ MSF 7.00\r\n\x1aDS\x00\x00\x00"

// pdbInfoStream is the fixed stream index of the PDB info stream.
const pdbInfoStream = 1

// maxDirectoryBytes caps the stream directory size we are willing to read.
const maxDirectoryBytes = 1 << 26

// PDBIdentity reads the content GUID and age embedded in a PDB file. The
// identity lives in the PDB info stream of the MSF container; only the
// superblock, the stream directory and the first bytes of that stream are
// touched. A corrupt or truncated file returns an error.
func PDBIdentity(path string) (uuid.UUID, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return uuid.Nil, 0, err
	}
	defer func() { _ = f.Close() }()

	var super [56]byte
	if _, err := io.ReadFull(f, super[:]); err != nil {
		return uuid.Nil, 0, fmt.Errorf("truncated superblock: %w", err)
	}
	if string(super[:32]) != msfMagic {
		return uuid.Nil, 0, fmt.Errorf("%s is not an MSF 7.0 file", path)
	}

	blockSize := binary.LittleEndian.Uint32(super[32:36])
	dirBytes := binary.LittleEndian.Uint32(super[44:48])
	blockMapAddr := binary.LittleEndian.Uint32(super[52:56])

	switch blockSize {
	case 512, 1024, 2048, 4096, 8192:
	default:
		return uuid.Nil, 0, fmt.Errorf("invalid MSF block size %d", blockSize)
	}
	if dirBytes == 0 || dirBytes > maxDirectoryBytes {
		return uuid.Nil, 0, fmt.Errorf("invalid stream directory size %d", dirBytes)
	}

	dir, err := readDirectory(f, blockSize, dirBytes, blockMapAddr)
	if err != nil {
		return uuid.Nil, 0, err
	}

	info, err := readStreamPrefix(f, dir, blockSize, pdbInfoStream, 28)
	if err != nil {
		return uuid.Nil, 0, err
	}

	age := binary.LittleEndian.Uint32(info[8:12])
	guid := guidFromWindowsBytes(info[12:28])
	return guid, age, nil
}

// readDirectory loads the MSF stream directory via the block map.
func readDirectory(f *os.File, blockSize, dirBytes, blockMapAddr uint32) ([]byte, error) {
	numBlocks := (dirBytes + blockSize - 1) / blockSize

	mapBytes := make([]byte, numBlocks*4)
	if _, err := f.ReadAt(mapBytes, int64(blockMapAddr)*int64(blockSize)); err != nil {
		return nil, fmt.Errorf("truncated directory block map: %w", err)
	}

	dir := make([]byte, 0, numBlocks*blockSize)
	block := make([]byte, blockSize)
	for i := uint32(0); i < numBlocks; i++ {
		idx := binary.LittleEndian.Uint32(mapBytes[i*4 : i*4+4])
		if _, err := f.ReadAt(block, int64(idx)*int64(blockSize)); err != nil {
			return nil, fmt.Errorf("truncated directory block %d: %w", idx, err)
		}
		dir = append(dir, block...)
	}

	return dir[:dirBytes], nil
}

// readStreamPrefix reads the first n bytes of the given stream.
func readStreamPrefix(f *os.File, dir []byte, blockSize uint32, stream int, n int) ([]byte, error) {
	if len(dir) < 4 {
		return nil, fmt.Errorf("stream directory too short")
	}
	numStreams := binary.LittleEndian.Uint32(dir[0:4])
	if int(numStreams) <= stream {
		return nil, fmt.Errorf("stream %d missing (%d streams)", stream, numStreams)
	}
	if uint32(len(dir)) < 4+4*numStreams {
		return nil, fmt.Errorf("stream directory truncated")
	}

	sizeOf := func(i int) uint32 {
		size := binary.LittleEndian.Uint32(dir[4+4*i : 8+4*i])
		if size == 0xFFFFFFFF { // nil stream
			return 0
		}
		return size
	}

	if sizeOf(stream) < uint32(n) {
		return nil, fmt.Errorf("stream %d too short (%d bytes)", stream, sizeOf(stream))
	}

	// Block lists follow the size table, one entry per occupied block, in
	// stream order.
	offset := 4 + 4*numStreams
	for i := 0; i < stream; i++ {
		offset += 4 * ((sizeOf(i) + blockSize - 1) / blockSize)
	}

	out := make([]byte, 0, n)
	block := make([]byte, blockSize)
	for len(out) < n {
		if uint32(len(dir)) < offset+4 {
			return nil, fmt.Errorf("stream %d block list truncated", stream)
		}
		idx := binary.LittleEndian.Uint32(dir[offset : offset+4])
		offset += 4
		if _, err := f.ReadAt(block, int64(idx)*int64(blockSize)); err != nil {
			return nil, fmt.Errorf("truncated stream block %d: %w", idx, err)
		}
		out = append(out, block...)
	}

	return out[:n], nil
}

// guidFromWindowsBytes converts an on-disk Windows GUID (little-endian
// Data1/Data2/Data3) to an RFC 4122 uuid.
func guidFromWindowsBytes(b []byte) uuid.UUID {
	var g uuid.UUID
	g[0], g[1], g[2], g[3] = b[3], b[2], b[1], b[0]
	g[4], g[5] = b[5], b[4]
	g[6], g[7] = b[7], b[6]
	copy(g[8:], b[8:16])
	return g
}
