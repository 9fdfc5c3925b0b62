// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Optional sinks (database, archive, kafka) are off unless enabled.
package config
