// Package config loads service configuration from environment variables
// with an optional YAML file overlay. Environment variables carry
// defaults via envconfig tags; a file given with -config wins over both.
package config
