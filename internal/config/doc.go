// Package config holds the runtime configuration of dartcam: every
// detection threshold, engine timing and output setting.
//
// Load reads a JSON file (a missing file yields the defaults), applies the
// DARTCAM_* environment overrides and validates the result. LoadDotEnv
// loads .env files before that so overrides can live beside the binary.
package config
