// Package config defines the server and worker configuration structs,
// validated with go-playground/validator, and the portal environment
// variable lookup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ConfigError is fatal at startup: missing required environment variables
// (portal enabled without host/port) or an invalid integer flag.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Reason)
}

var validate = validator.New()

// Server holds the fully-resolved server subcommand configuration.
type Server struct {
	Address  string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Width    int    `validate:"min=1"`
	Height   int    `validate:"min=1"`
	Tiles    int    `validate:"min=1"`
	Graphics bool
	Portal   bool
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Worker holds the fully-resolved worker subcommand configuration.
type Worker struct {
	Name            string `validate:"required"`
	Address         string `validate:"required"`
	Port            int    `validate:"min=1,max=65535"`
	MaximalWorkLoad uint32 `validate:"min=1"`
	Count           int    `validate:"min=1"`
}

// PortalEndpoint is the resolved host/port the portal listens on, sourced
// from the PORTAL_HOST/PORTAL_PORT environment variables.
type PortalEndpoint struct {
	Host string
	Port int
}

// Validate applies struct-tag validation, wrapping the first failure as a
// ConfigError.
func (s Server) Validate() error {
	if err := validate.Struct(s); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	return nil
}

// Validate applies struct-tag validation, wrapping the first failure as a
// ConfigError.
func (w Worker) Validate() error {
	if err := validate.Struct(w); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	return nil
}

// LoadPortalEndpoint reads PORTAL_HOST and PORTAL_PORT from the
// environment. It is only called when the portal is enabled; both
// variables are required in that case.
func LoadPortalEndpoint() (PortalEndpoint, error) {
	host := os.Getenv("PORTAL_HOST")
	portStr := os.Getenv("PORTAL_PORT")
	if host == "" {
		return PortalEndpoint{}, &ConfigError{Reason: "PORTAL_HOST is required when the portal is enabled"}
	}
	if portStr == "" {
		return PortalEndpoint{}, &ConfigError{Reason: "PORTAL_PORT is required when the portal is enabled"}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return PortalEndpoint{}, &ConfigError{Reason: fmt.Sprintf("PORTAL_PORT %q is not a valid TCP port", portStr)}
	}
	return PortalEndpoint{Host: host, Port: port}, nil
}
