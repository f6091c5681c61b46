// Package config loads TOML application configuration and supports live
// reload through filesystem watching.
package config
