// Package config provides configuration loading and validation for quire.
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
//  3. Environment variables (QUIRE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with the QUIRE_ prefix:
//   - server.port → QUIRE_SERVER_PORT
//   - database.type → QUIRE_DATABASE_TYPE
//   - supabase.key → QUIRE_SUPABASE_KEY
//   - auth.jwt.secret → QUIRE_AUTH_JWT_SECRET
//
// # Sections
//
//   - server: port, timeouts, max_content_bytes
//   - service: cleanup_timeout for admin operations
//   - database: type (sqlite, postgres, supabase), dsn, tables.records
//   - storage: type (filesystem, supabase), path, bucket, compress
//   - supabase: url, key, schema; required when any section uses supabase
//   - auth: mode (jwt, supabase, static), jwt settings, static tokens
//   - cors, log (level, format), metrics (enabled, path)
//   - breaker: circuit breaker settings for the supabase backends
package config
