// Package configs resolves the settings for a jsonsig run.
//
// Values are layered in order, later layers winning:
//
//  1. Built-in defaults (DefaultSettings): ./keys, name "jsonsig", 4096 bits
//  2. The TOML config file, by default <user config dir>/jsonsig/config.toml
//  3. Command-line flags that were explicitly set
//
// # Config File
//
//	[key_cache]
//	dir = "/var/lib/jsonsig/keys"
//	name = "jsonsig"
//	bits = 4096
//	lock = true
//	lock_timeout = "30s"
//
//	[audit]
//	enabled = true
//
// A missing file is not an error. Unknown keys are, so typos surface.
package configs
