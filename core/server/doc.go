// Package server holds the HTTP server configuration.
//
// The operations API (health, sync job status, manual triggers, mapper preview and
// metrics) is served by Fiber from cmd/start.go; this package only defines the
// listen port and the API key that protects it.
package server
