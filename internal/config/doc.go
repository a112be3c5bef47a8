// Package config loads the tutor client's TOML configuration.
//
// # Resolution order
//
//  1. Built-in defaults (see Default)
//  2. The TOML file, ~/.config/gittutor/config.toml unless a path is given
//  3. GITTUTOR_* environment variables, including any loaded from .env files
//
// A missing config file is not an error. The client works against a local API
// at http://localhost:5000/api/v2 without any configuration.
//
// # TOML Format
//
//	api_url = "http://localhost:5000/api/v2"
//	data_dir = "~/.local/share/gittutor"
//	log_level = "info"
//	request_timeout = "30s"
//	refresh_interval = "0s"
//	metrics_addr = ""
//	sync_comments = false
//
// Every field is optional. Tilde expansion is performed for data_dir. A zero
// refresh_interval (the default) disables background catalog refreshes.
//
// # Derived paths
//
// The session snapshot, the enrollment cache and the client log all live under
// data_dir; see SessionPath, EnrollmentsPath and LogPath.
package config
