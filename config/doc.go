// Package config provides configuration loading and validation for the mock
// Atmos endpoint.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (ATMOS_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with ATMOS_ prefix:
//   - server.port → ATMOS_SERVER_PORT
//   - keys.file → ATMOS_KEYS_FILE
//   - log.level → ATMOS_LOG_LEVEL
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: listen port and graceful shutdown timeout
//   - Keys: uid/secret pairs, inline or from a JSON file
//   - CORS: cross-origin resource sharing settings
//   - Metrics: Prometheus scrape endpoint
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Metrics path must start with a slash
//   - Log level must be debug, info, warn, or error
//
// Secrets are checked when the key store is built, not here.
package config
