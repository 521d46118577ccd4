// Package config manages user-level settings stored at ~/.tw/config.yaml
// and TW_* environment variables. Settings are resolved once into a Config
// value that callers pass down explicitly.
package config
