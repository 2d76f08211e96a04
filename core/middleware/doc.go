// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: validates the X-API-Key header against the configured key.
//   - rayid: assigns every request a ray id, stored in the fiber locals and
//     echoed in the X-Ray-ID response header for tracing.
package middleware
