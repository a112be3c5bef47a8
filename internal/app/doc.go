// Package app is the composition root of the tutor client.
//
// Run loads configuration (TOML file, then .env files, then environment),
// opens the JSON log under the data directory, builds the API client with
// its Prometheus collectors, restores the saved session, and hands
// everything to the UI.
//
//	Run()
//	  ├─> config.Load()          file + env overrides
//	  ├─> openLogger()           slog JSON to <data_dir>/gittutor.log
//	  ├─> api.NewClient()        metrics on a private registry
//	  ├─> session.NewGate()      Restore() with a short timeout
//	  ├─> enroll.NewService()    API + per-user cache file
//	  ├─> serveMetrics()         only when metrics_addr is set
//	  ├─> StartPoller()          only when refresh_interval > 0
//	  └─> ui.Run()               blocks until the viewer quits
//
// The poller keeps state.Store's catalog snapshot fresh in the background
// and backs off exponentially, up to 30 seconds, while the API is
// unreachable. Without it the catalog is fetched on demand by the UI.
package app
