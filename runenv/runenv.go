// Package runenv discovers facts about the host the process is running on.
package runenv

import (
	"fmt"
	"os"
	"regexp"
)

const (
	// LocalEnv represents local environment.
	LocalEnv = Env("local")
	// DevEnv represents development environment.
	DevEnv = Env("dev")
	// TestEnv represents test environment.
	TestEnv = Env("test")
	// ProdEnv represents production environment.
	ProdEnv = Env("prod")

	defaultEnvironment = LocalEnv
)

var environmentRegexp = regexp.MustCompile(`.*-(prod|test|dev)\..*`)

var getOsHostname = OsHostname

// Env is name of the environment on which service is running.
type Env string

// Environment returns current environment based on hostname. If it cannot determine
// the hostname it returns an error.
func Environment() (Env, error) {
	hostname, err := Hostname()

	if err != nil {
		return defaultEnvironment, err
	}

	matches := environmentRegexp.FindStringSubmatch(hostname)

	if len(matches) < 2 {
		return defaultEnvironment, nil
	}

	return Env(matches[1]), nil
}

// Hostname returns the host name logs are reported from. GRAYGELF_SOURCE and
// CLOUD_HOSTNAME take precedence over the operating system host name.
func Hostname() (string, error) {
	for _, name := range []string{"GRAYGELF_SOURCE", "CLOUD_HOSTNAME"} {
		if value, err := getEnvVarIfSet(name); err == nil {
			return value, nil
		}
	}
	return getOsHostname()
}

// HostnameOr returns Hostname or fallback when it cannot be determined.
func HostnameOr(fallback string) string {
	hostname, err := Hostname()
	if err != nil || hostname == "" {
		return fallback
	}
	return hostname
}

// getEnvVarIfSet returns environment variable value when it is set
// or error when it's empty or not set
func getEnvVarIfSet(name string) (string, error) {
	if os.Getenv(name) != "" {
		return os.Getenv(name), nil
	}
	return "", fmt.Errorf("no %s environment variable set", name)
}
