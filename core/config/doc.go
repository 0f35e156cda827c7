// Package config loads pagelens settings with viper from defaults, an
// optional config file, a .env file, PAGELENS_* environment variables and
// command-line flags, and converts them into the configuration values of the
// fetch, ollama, pipeline and server packages.
package config
