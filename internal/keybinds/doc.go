/*
Package keybinds maps terminal keys to panel actions.

Bindings live in contexts. A lookup checks the active context first and
falls back to ContextGlobal, so a context can shadow a global key.

Users override defaults with keybinds.json (JSONC accepted) in the config
directory. Each section is a context name mapping an action to a
comma-separated list of keys:

	{
	  // space is written as " "
	  "catalog": { "toggle_select": " ,i" },
	  "drawer":  { "copy_artifact": "y,ctrl+y" }
	}

ctrl+c is reserved for force quit and cannot be rebound.
*/
package keybinds
