// Package config loads, validates, and normalizes submate configuration.
//
// Configuration is TOML, resolved from an explicit path, then
// ~/.config/submate/config.toml, then ./submate.toml. Defaults are always
// applied first so a missing file yields a runnable configuration. All path
// fields are tilde-expanded and made absolute during normalization.
package config
