// Package handlers provides command handler functions for rplusctl.
//
// Each handler is a cobra RunE function: it sets up logging, calls the
// daemon through the API client and hands the result to the display
// package. Handlers never format output themselves.
package handlers

import (
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/netutil"
)

// explain adds a hint for the most common failure, a daemon that is not
// running, and returns err unchanged.
func explain(err error) error {
	if err != nil && netutil.IsConnectionRefusedError(err) {
		logging.Error("TIP: Is rplusd running? Start it with: rplusd")
		logging.Error("     If it picked another port, pass --api=<host:port>")
	}
	return err
}
