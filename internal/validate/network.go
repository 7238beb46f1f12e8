// Package validate provides input validation for the rplus daemon and CLI,
// built on the go-playground/validator library.
//
// VALIDATION COVERAGE:
//   - Bind addresses: "host:port" with a literal IP and a valid port
//   - Site endpoints: absolute http(s) base URLs
//   - Setting keys: the characters a settings store will accept
//   - Config structs: struct tags checked through one shared validator
package validate

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
}

// NetworkAddress is a validated "host:port" pair for the daemon's listener.
type NetworkAddress struct {
	Host string `validate:"required,ip"`
	Port int    `validate:"min=0,max=65535"`
}

// String returns the address in "host:port" form.
func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses and validates a "host:port" address string. The host
// must be a literal IP address; port 0 lets the OS pick a free port.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateBaseURL checks that raw is an absolute http or https URL, as used
// for the site API endpoints and the daemon address given to rplusctl.
func ValidateBaseURL(raw, name string) error {
	if err := ValidateField(raw, "required,http_url"); err != nil {
		return fmt.Errorf("%s must be an absolute http(s) URL, got '%s'", name, raw)
	}
	return nil
}

// ValidateField validates a single value against validator tags.
//
// Example: ValidateField("192.168.1.1", "required,ip")
func ValidateField(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

// Struct validates every tagged field of s.
func Struct(s interface{}) error {
	return validate.Struct(s)
}
