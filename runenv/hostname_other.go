//go:build !darwin && !freebsd && !linux
// +build !darwin,!freebsd,!linux

package runenv

import "os"

// OsHostname returns os.Hostname() on systems without hostname -f.
func OsHostname() (string, error) {
	return os.Hostname()
}
