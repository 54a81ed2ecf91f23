package gateway

import (
	"fmt"
	"strings"
)

// ConfigError is returned by Configure when required credentials are
// missing or empty. The gateway is unusable until configured correctly.
type ConfigError struct {
	Gateway     string
	MissingKeys []string
	Message     string
}

func (e *ConfigError) Error() string {
	if len(e.MissingKeys) > 0 {
		return fmt.Sprintf("%s: missing required config keys: %s", e.Gateway, strings.Join(e.MissingKeys, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
}

// GatewayNotFoundError is returned when a gateway name is not registered
type GatewayNotFoundError struct {
	Name string
}

func (e *GatewayNotFoundError) Error() string {
	return fmt.Sprintf("payment gateway '%s' is not registered", e.Name)
}

// UnsupportedOperationError is returned before any network call when a
// gateway is asked for a feature it does not declare.
type UnsupportedOperationError struct {
	Gateway string
	Feature Feature
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("gateway '%s' does not support '%s'", e.Gateway, e.Feature)
}

// AuthenticationError is returned when a 3-D Secure callback fails
// signature verification. The payment must not be finalized.
type AuthenticationError struct {
	Gateway string
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
}

// NetworkError wraps a transport level failure (DNS, connect, timeout).
// Provider responses with non-2xx status codes are not network errors;
// they are parsed and classified like any other response.
type NetworkError struct {
	Gateway string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Gateway, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
