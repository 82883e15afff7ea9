// Package argus is a Go client for the Argus visual dataset service.
//
// The Client provides a high-level interface for managing remote datasets
// and pushing local media files into them. A push resolves an include and
// exclude listing into a concrete file set, derives a /-rooted remote folder
// for every file, registers the batch with the service, transfers bytes to
// signed storage URLs, and waits for server-side processing, with
// configurable concurrency and per-item failure isolation.
package argus
