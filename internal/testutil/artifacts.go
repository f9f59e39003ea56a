// Package testutil synthesizes minimal well-formed PE and PDB files for
// tests. The artifacts carry real headers so the validators exercise the
// same parsing paths they use in production.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// WritePE writes a minimal PE32 image with the given build timestamp and
// image size to path.
func WritePE(t *testing.T, path string, timeStamp, imageSize uint32) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, PEBytes(timeStamp, imageSize), 0644); err != nil {
		t.Fatal(err)
	}
}

// PEBytes builds a minimal PE32 image: DOS stub, PE signature, file header
// and a 96-byte optional header with zero data directories.
func PEBytes(timeStamp, imageSize uint32) []byte {
	var buf bytes.Buffer

	// DOS header: "MZ", e_lfanew at 0x3c pointing right after the header.
	dos := make([]byte, 64)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3c:], 64)
	buf.Write(dos)

	buf.WriteString("PE\x00\x00")

	// COFF file header.
	fh := make([]byte, 20)
	binary.LittleEndian.PutUint16(fh[0:], 0x014c) // i386
	binary.LittleEndian.PutUint16(fh[2:], 0)      // no sections
	binary.LittleEndian.PutUint32(fh[4:], timeStamp)
	binary.LittleEndian.PutUint16(fh[16:], 96) // optional header size
	buf.Write(fh)

	// PE32 optional header, NumberOfRvaAndSizes = 0.
	oh := make([]byte, 96)
	binary.LittleEndian.PutUint16(oh[0:], 0x10b)
	binary.LittleEndian.PutUint32(oh[56:], imageSize)
	buf.Write(oh)

	return buf.Bytes()
}

// WritePDB writes a minimal MSF 7.0 PDB whose info stream carries the given
// GUID and age.
func WritePDB(t *testing.T, path string, guid uuid.UUID, age uint32) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, PDBBytes(guid, age), 0644); err != nil {
		t.Fatal(err)
	}
}

// PDBBytes builds a 4-block MSF 7.0 container: superblock, directory block
// map, stream directory, and the PDB info stream (stream 1).
func PDBBytes(guid uuid.UUID, age uint32) []byte {
	const blockSize = 512
	const msfMagic = "Microsoft C/C++ MSF 7.00\r\n\x1aDS\x00\x00\x00"

	file := make([]byte, 4*blockSize)

	// Block 0: superblock.
	copy(file[0:], msfMagic)
	binary.LittleEndian.PutUint32(file[32:], blockSize)
	binary.LittleEndian.PutUint32(file[36:], 1) // free block map
	binary.LittleEndian.PutUint32(file[40:], 4) // block count
	binary.LittleEndian.PutUint32(file[44:], 16) // directory bytes
	binary.LittleEndian.PutUint32(file[52:], 1) // block map lives in block 1

	// Block 1: directory block map, one entry pointing at block 2.
	binary.LittleEndian.PutUint32(file[1*blockSize:], 2)

	// Block 2: stream directory. Two streams: stream 0 empty, stream 1 is
	// the 28-byte info stream in block 3.
	dir := file[2*blockSize:]
	binary.LittleEndian.PutUint32(dir[0:], 2)  // stream count
	binary.LittleEndian.PutUint32(dir[4:], 0)  // stream 0 size
	binary.LittleEndian.PutUint32(dir[8:], 28) // stream 1 size
	binary.LittleEndian.PutUint32(dir[12:], 3) // stream 1 block list

	// Block 3: PDB info stream.
	info := file[3*blockSize:]
	binary.LittleEndian.PutUint32(info[0:], 20000404) // VC70 version
	binary.LittleEndian.PutUint32(info[4:], 0)        // signature
	binary.LittleEndian.PutUint32(info[8:], age)
	copy(info[12:28], windowsGUIDBytes(guid))

	return file
}

// windowsGUIDBytes converts an RFC 4122 uuid to the little-endian GUID
// layout PDB files store on disk.
func windowsGUIDBytes(g uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = g[3], g[2], g[1], g[0]
	b[4], b[5] = g[5], g[4]
	b[6], b[7] = g[7], g[6]
	copy(b[8:], g[8:])
	return b
}

// GzipBytes compresses data with gzip, the wire format of compressed
// server artifacts.
func GzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
