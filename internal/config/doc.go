// Package config provides configuration for the sigstress load generator.
//
// Configuration is resolved in three layers, later layers overriding
// earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (Loader.Load)
//  3. SIGSTRESS_* environment variables (ApplyEnv)
//
// Command-line flags are applied on top by the caller. Validate must be
// called on the final result.
//
// Example file:
//
//	[signal]
//	name = "stress"
//	sync_handlers = 4
//	async_handlers = 4
//
//	[load]
//	emitters = 8
//	emits = 10000
//	rate = 5000.0
//	work = "50us"
//
//	[logging]
//	level = "info"
package config
