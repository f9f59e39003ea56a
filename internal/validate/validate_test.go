package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"symsrv/internal/testutil"
)

var testGUID = uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")

func TestPDBIdentityRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.pdb")
	testutil.WritePDB(t, path, testGUID, 7)

	guid, age, err := PDBIdentity(path)
	if err != nil {
		t.Fatalf("PDBIdentity failed: %v", err)
	}
	if guid != testGUID {
		t.Errorf("guid = %s, want %s", guid, testGUID)
	}
	if age != 7 {
		t.Errorf("age = %d, want 7", age)
	}
}

func TestPDBIdentityRejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("MZ")},
		{"wrong magic", make([]byte, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := PDBIdentity(path); err == nil {
				t.Error("expected error for corrupt file")
			}
		})
	}
}

func TestPDBIdentityTruncated(t *testing.T) {
	full := testutil.PDBBytes(testGUID, 3)
	path := filepath.Join(t.TempDir(), "trunc.pdb")
	if err := os.WriteFile(path, full[:600], 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := PDBIdentity(path); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestPEImageInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.dll")
	testutil.WritePE(t, path, 0x4a5bc123, 0x25000)

	ts, size, err := PEImageInfo(path)
	if err != nil {
		t.Fatalf("PEImageInfo failed: %v", err)
	}
	if ts != 0x4a5bc123 || size != 0x25000 {
		t.Errorf("got (%x, %x), want (4a5bc123, 25000)", ts, size)
	}
}

func TestSymbolValidator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.pdb")
	testutil.WritePDB(t, path, testGUID, 2)

	check := Symbol(nil)

	if !check(path, testGUID, 2) {
		t.Error("matching identity should validate")
	}
	if check(path, testGUID, 1) {
		t.Error("wrong age must not validate")
	}
	if check(path, uuid.New(), 2) {
		t.Error("wrong guid must not validate")
	}
	if check(filepath.Join(dir, "absent.pdb"), testGUID, 2) {
		t.Error("missing file must not validate")
	}

	corrupt := filepath.Join(dir, "corrupt.pdb")
	if err := os.WriteFile(corrupt, []byte("not a pdb"), 0644); err != nil {
		t.Fatal(err)
	}
	if check(corrupt, testGUID, 2) {
		t.Error("corrupt file must not validate")
	}
}

func TestBinaryValidator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.dll")
	testutil.WritePE(t, path, 100, 200)

	check := Binary(nil)

	if !check(path, 100, 200, true) {
		t.Error("matching header should validate")
	}
	if check(path, 100, 999, true) {
		t.Error("wrong size must not validate")
	}
	if check(path, 999, 200, true) {
		t.Error("wrong timestamp must not validate")
	}
	if !check(path, 999, 999, false) {
		t.Error("existence suffices when properties are not checked")
	}
	if check(filepath.Join(dir, "absent.dll"), 100, 200, false) {
		t.Error("missing file never validates")
	}

	corrupt := filepath.Join(dir, "corrupt.dll")
	if err := os.WriteFile(corrupt, []byte("MZ garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if check(corrupt, 100, 200, true) {
		t.Error("corrupt header must not validate when properties are checked")
	}
}
