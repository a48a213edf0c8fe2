// Package config loads the project configuration from crxgen.yaml at the
// project root, CRXGEN_* environment variables and an optional .env file,
// and resolves it into the settings a build needs.
package config
