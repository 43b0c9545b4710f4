// Package config handles loading and validating pmcconfig configuration.
//
// This package manages:
//   - Loading an optional YAML configuration file
//   - Loading a dotenv file into the environment
//   - Overriding with PMCCONFIG_* environment variables
//   - Validation of every field, reporting all problems at once
//
// The tool runs with no configuration at all: Default returns values that
// match the historic behaviour (backups on, real values at column 32,
// warnings only on stderr, no journal).
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("PMCCONFIG_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Backup.Suffix)
package config
