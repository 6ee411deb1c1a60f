// Package filesystem routes all file access through a swappable afero backend,
// so tests and CI can run against an in-memory tree while production uses the OS.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance. Callers must not cache it
// across a backend swap.
func API() afero.Afero {
	return backend
}

// SetOsFs switches the backend to the native operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches the backend to a fresh volatile in-memory filesystem.
// Rule stores, config and logs written afterwards live only for the process.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}
