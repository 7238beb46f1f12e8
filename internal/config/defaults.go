// Package config provides the default values shared by rplusd and rplusctl,
// so the daemon and the CLI agree on where the API lives without either
// importing the other.
package config

import (
	"strconv"
	"time"
)

const (
	// DefaultBindAddr keeps the API on loopback. The daemon holds a session
	// cookie, so it is never exposed beyond the local machine by default.
	DefaultBindAddr = "127.0.0.1"

	// DefaultAPIPort is the port of the daemon's HTTP API
	DefaultAPIPort = 7420

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultSettingsFile is where the file-backed settings store lives
	DefaultSettingsFile = "./data/settings.yaml"

	// DefaultRedisPrefix namespaces settings keys in a shared Redis
	DefaultRedisPrefix = "rplus:"

	// DefaultSiteTimeout bounds a single request to the site
	DefaultSiteTimeout = 10 * time.Second

	// ResponseSlack is the time a handler has left to write its response
	// after its own deadline. Clients wait this much longer than the server.
	ResponseSlack = 5 * time.Second
)

// DefaultAPIAddr returns the host:port the CLI talks to by default.
func DefaultAPIAddr() string {
	return DefaultBindAddr + ":" + strconv.Itoa(DefaultAPIPort)
}
