package secrets

import "path/filepath"

// PublicKeySuffix is appended to the private key path to form the public key path.
const PublicKeySuffix = ".pub"

// CacheLocation identifies where one named key pair lives on disk.
type CacheLocation struct {
	Dir  string
	Name string
}

// Paths returns the private and public key paths for the location.
func (l CacheLocation) Paths() (string, string) {
	return ResolvePaths(l.Dir, l.Name)
}

// ResolvePaths maps a cache directory and base name to the private key path
// <dir>/<name> and the public key path <dir>/<name>.pub.
func ResolvePaths(dir, name string) (privatePath string, publicPath string) {
	privatePath = filepath.Join(dir, name)
	return privatePath, privatePath + PublicKeySuffix
}
