// Package config loads and validates the server configuration from
// environment variables.
package config
