// Package overlay reads data files that ship embedded in the binary. A copy
// under the matching directory on disk wins, so authored files can be
// edited without a rebuild.
package overlay

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is one embedded data directory. Name is both the directory on disk
// and the prefix callers may leave on file names.
type Dir struct {
	Name string
	FS   fs.FS
}

// Clean turns a path that may include Name, or anything before it, into a
// slash-separated name relative to the directory.
func (d Dir) Clean(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	prefix := d.Name + "/"
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):]
	}
	if i := strings.LastIndex(s, "/"+prefix); i >= 0 {
		return s[i+len(prefix)+1:]
	}
	return s
}

// DiskPath is where an override of name lives.
func (d Dir) DiskPath(name string) string {
	return filepath.Join(d.Name, filepath.FromSlash(d.Clean(name)))
}

// Read returns name from disk when present, otherwise the embedded copy.
func (d Dir) Read(name string) ([]byte, error) {
	if data, err := os.ReadFile(d.DiskPath(name)); err == nil {
		return data, nil
	}
	return fs.ReadFile(d.FS, d.Clean(name))
}
