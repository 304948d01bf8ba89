// Package layout prepares the scratch file that timed write runs
// write into: its directory, and optionally its initial contents
package layout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// layoutChunk is the write size used when laying out a scratch file
const layoutChunk = 1 << 20

// EnsureWritableDirectory makes sure the directory that will hold the
// scratch file exists and can be written to, creating it if possible
func EnsureWritableDirectory(dirPath string) error {
	// first check if directory exists
	if info, err := os.Stat(dirPath); err == nil {
		// directory exists, check if it's a directory and writable
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", dirPath)
		}

		// try to create a temporary file to test writeability
		f, err := os.CreateTemp(dirPath, ".write_test")
		if err != nil {
			return fmt.Errorf("directory %s exists but is not writable: %w", dirPath, err)
		}
		f.Close()
		os.Remove(f.Name())

		return nil
	} else if !os.IsNotExist(err) {
		// error other than "not exists" occurred
		return fmt.Errorf("failed to check directory %s: %w", dirPath, err)
	}

	// directory doesn't exist, try to create it
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}

	return nil
}

// EnsureScratchDirectory runs EnsureWritableDirectory on the parent of path
func EnsureScratchDirectory(path string) error {
	return EnsureWritableDirectory(filepath.Dir(path))
}

// LayoutScratchFile writes size bytes of filler to file and syncs it, so
// later runs overwrite allocated blocks instead of extending the file.
// if reinitialize is false an existing file of the right size is kept.
func LayoutScratchFile(file string, size int64, filler byte, reinitialize bool) error {
	if size < 0 {
		return fmt.Errorf("layout size must not be negative, got %d", size)
	}

	// check if file already exists with correct size
	if !reinitialize && CheckExistingFile(file, size) {
		// file exists and is valid, no need to recreate
		return nil
	}

	// create the scratch file, dropping anything past size
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	// ensure file is closed when function returns
	defer f.Close()

	// write the filler in bounded chunks
	chunk := bytes.Repeat([]byte{filler}, int(min(size, layoutChunk)))
	for remaining := size; remaining > 0; {
		n := min(remaining, int64(len(chunk)))
		if _, err := f.Write(chunk[:n]); err != nil {
			return fmt.Errorf("failed to write filler to file: %w", err)
		}
		remaining -= n
	}

	// sync file to ensure data is written to disk
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	return f.Close()
}

// CheckExistingFile reports whether a scratch file of exactly size bytes
// is already in place and can be reopened for writing, in which case a
// layout pass would only rewrite the same filler
func CheckExistingFile(file string, size int64) bool {
	info, err := os.Stat(file)
	if err != nil || info.Size() != size {
		return false
	}

	// timed runs open read/write, so a read only file would fail later
	f, err := os.OpenFile(file, os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()

	return true
}
