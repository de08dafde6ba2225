// Package config manages the ccdir configuration file.
//
// Configuration is read with Viper from ~/.config/ccdir/config.yaml (or
// the current directory), overlaid by CCDIR_* environment variables. A .env
// file in the working directory is loaded first so those variables can be
// kept out of the shell profile:
//
//	version: 1
//	sources:
//	  team-prompts:
//	    url: https://github.com/acme/claude-prompts.git
//	  local:
//	    path: /home/me/ccdir-drafts
//	server:
//	  addr: ":8080"
//	  cors_origins: ["https://claudecode.directory"]
//	  watch: true
//	render:
//	  style: auto
//	  width: 100
//	store:
//	  driver: sqlite
//	  dsn: /home/me/.local/share/ccdir/ccdir.db
//	publish:
//	  driver: s3
//	  bucket: ccdir-bundles
//	  region: us-east-1
//	  key: catalog.json
//
// Call [Init] once at startup, then [Load]. [Validate] returns every
// problem found rather than stopping at the first.
package config
