// Package config loads, normalizes, and validates vadscribe configuration.
//
// TOML is the primary format; files ending in .yaml or .yml are decoded with
// the same key names. A .env file next to the config (or in the working
// directory) is loaded before environment fallbacks are applied. Load always
// returns a config whose paths are absolute and whose values passed Validate.
package config
