package netutil

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// AddressInUseError is returned when the requested port is taken. It keeps
// the underlying error for errors.Is checks.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// Listen binds a TCP listener on address:port. The port stays reserved until
// the listener is closed, so it can be handed to a server that starts later.
func Listen(address string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(address, strconv.Itoa(port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{Port: port, Address: address, Err: err}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}
	return listener, nil
}

// ListenWithFallback tries preferredPort and then the following ports, up to
// maxAttempts in total, skipping only ports that are in use. It returns the
// listener and the port it bound.
func ListenWithFallback(address string, preferredPort, maxAttempts int) (net.Listener, int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for port := preferredPort; port < preferredPort+maxAttempts && port <= 65535; port++ {
		listener, err := Listen(address, port)
		if err != nil {
			var inUse *AddressInUseError
			if errors.As(err, &inUse) {
				continue
			}
			return nil, 0, err
		}
		return listener, port, nil
	}

	return nil, 0, fmt.Errorf("no available TCP port found in range %d-%d on %s",
		preferredPort, preferredPort+maxAttempts-1, address)
}

// ListenerPort returns the port a TCP listener is bound to.
func ListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}
	return tcpAddr.Port, nil
}
