package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/klauspost/readahead"
)

// stdinSource is the file argument naming standard input.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueFiles returns paths in order without duplicates. Paths naming the
// same file through symlinks or relative segments are duplicates, as are
// repeated "-". Paths that cannot be resolved are kept so that reading them
// reports the error.
func uniqueFiles(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	var (
		unique = make([]string, 0, len(paths))
		seen   = make(map[fileKey]struct{})
		stdin  bool
	)

	for _, path := range paths {
		if path == stdinSource {
			if !stdin {
				unique = append(unique, path)
			}

			stdin = true

			continue
		}

		key, ok := statFile(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		unique = append(unique, path)
	}

	return unique
}

// statFile resolves path and returns its device and inode.
func statFile(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// readFile returns the content of path, or of standard input for "-".
func readFile(path string) ([]byte, error) {
	var r io.Reader = os.Stdin

	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

// templateText returns file content as a format string, dropping one
// trailing line ending.
func templateText(buf []byte) string {
	s := string(buf)
	if t, ok := strings.CutSuffix(s, "\n"); ok {
		s = strings.TrimSuffix(t, "\r")
	}

	return s
}
