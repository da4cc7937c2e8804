//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package runenv

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

var hostnameCommand execCommand = execHostnameFqdn{}
var defaultHostname = os.Hostname

// OsHostname returns the fully qualified host name reported by hostname -f,
// resorting to os.Hostname if the command fails or prints nothing.
func OsHostname() (string, error) {
	fqdn, err := hostnameCommand.Run()
	fqdn = strings.TrimSpace(fqdn)
	if err != nil || len(fqdn) == 0 {
		return defaultHostname()
	}

	return fqdn, nil
}

type execCommand interface {
	Run() (string, error)
}

type execHostnameFqdn struct{}

func (execHostnameFqdn) Run() (string, error) {
	cmd := exec.Command("hostname", "-f") // nolint: gas
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()

	if err != nil {
		return "", errors.Wrap(err, "could not run hostname -f")
	}

	return out.String(), nil
}
