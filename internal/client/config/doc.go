// Package config loads runtime configuration for the PadiPay client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the PadiPay backend API
//	-d string   data directory for the local stores
//	-t int      request timeout (seconds)
//	-p int      cold-start session probe timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "5s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.padipay.ng",
//	  "data_dir": "/home/ada/.padipay",
//	  "request_timeout": "15s",
//	  "session_probe_timeout": "5s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
