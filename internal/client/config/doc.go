// Package config loads runtime configuration for the postboard terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables with the POSTBOARD_ prefix; a .env file in the
//     working directory is loaded first when present (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string   gateway base URL
//	-t int      request timeout (seconds)
//	-d string   SQLite database file
//	-l string   log level
//
// Environment
//
//	POSTBOARD_SERVER_URL, POSTBOARD_REQUEST_TIMEOUT ("10s"),
//	POSTBOARD_DATABASE_DSN, POSTBOARD_LOG_LEVEL
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8080/api",
//	  "request_timeout": "10s",
//	  "database_dsn": "board.db",
//	  "log_level": "info"
//	}
package config
