package fileutil_test

// Notes:
// - Permission-based failures are not tested: they depend on the user the
//   tests run as (root ignores directory modes).

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-url2pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic replacement
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), fileutil.FilePermissions); err != nil {
		t.Fatalf("WriteFileAtomic() error: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), fileutil.FilePermissions); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the target (no temp files left)", len(entries))
	}
}

func TestWriteFileAtomic_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"empty path", "", fileutil.ErrEmptyPath},
		{"missing directory", filepath.Join(t.TempDir(), "nope", "out.pdf"), os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.WriteFileAtomic(tt.path, []byte("x"), fileutil.FilePermissions)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WriteFileAtomic(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRemoveIfExists - Stale file removal
// ---------------------------------------------------------------------------

func TestRemoveIfExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "screenshot_1.png")
	if err := os.WriteFile(file, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"existing file", file, nil},
		{"missing file", filepath.Join(dir, "missing.png"), nil},
		{"directory", dir, fileutil.ErrIsDir},
		{"empty path", "", fileutil.ErrEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileutil.RemoveIfExists(tt.path)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("RemoveIfExists(%q) error: %v", tt.path, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("RemoveIfExists(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}

	if fileutil.FileExists(file) {
		t.Error("file still exists after RemoveIfExists")
	}
}

// ---------------------------------------------------------------------------
// TestEnsureDir - Directory creation
// ---------------------------------------------------------------------------

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b", "screenshots")
	if err := fileutil.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() on existing dir error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("%s is not a directory: %v", dir, err)
	}

	if err := fileutil.EnsureDir(""); !errors.Is(err, fileutil.ErrEmptyPath) {
		t.Errorf("EnsureDir(\"\") error = %v, want ErrEmptyPath", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirWritable - Probes
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "urls.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, directories are not files")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true")
	}
}

func TestDirWritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if !fileutil.DirWritable(dir) {
		t.Error("DirWritable(tempdir) = false")
	}
	if fileutil.DirWritable(filepath.Join(dir, "missing")) {
		t.Error("DirWritable(missing) = true")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe left %d files behind", len(entries))
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Name vs path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"ci", false},
		{"url2pdf.yaml", false},
		{"./url2pdf.yaml", true},
		{"/etc/url2pdf/ci.yaml", true},
		{`C:\config\ci.yaml`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
