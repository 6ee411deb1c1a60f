package filesystem

import (
	"io"
	"os"
)

// GacheFs bridges the afero backend to gache's FileSystem interface, so the
// commit-marker cache follows whatever backend is active.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
