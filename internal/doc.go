// Package internal contains private implementation details for the Argus SDK.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - api: Service contract interface for mocking and alternative transports
//   - rest: HTTP implementation of the service contract
//   - fileset: Include/exclude resolution of local files and directories
//   - pathing: Remote folder derivation and imposed path validation
//   - items: Upload item construction from resolved file sets
//   - upload: Register, transfer, confirm, poll pipeline
//   - testutil: Shared test doubles, including an in-process fake service
package internal
