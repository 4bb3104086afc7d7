// Package config provides configuration management for radsweep.
//
// Configuration is read from a YAML file, layered over built-in defaults,
// optionally overridden from the environment and validated as a whole.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("radsweep.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("radsweep.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RADSWEEP_SECTION_FIELD:
//
//   - RADSWEEP_DATABASE_DSN overrides database.dsn
//   - RADSWEEP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - RADSWEEP_SERVER_LISTEN_ADDRESS overrides server.listen_address
//
// Per-job settings are file-only.
//
// # Example
//
//	database:
//	  driver: postgres
//	  dsn: postgres://radius:secret@db/radius?sslmode=disable
//	retention:
//	  extra_methods: [voucher]
//	jobs:
//	  cleanup_stale_sessions:
//	    schedule: "*/15 * * * *"
//	    params:
//	      age_threshold_days: "30"
//	  delete_unverified_users:
//	    schedule: "@daily"
//	    params:
//	      excluded_methods: "mobile_phone,voucher"
//
// # Hot Reload
//
// Watcher reloads the file when it changes and passes each valid revision
// to a callback. "radsweep serve" uses it to re-register job schedules.
package config
