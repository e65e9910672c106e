// Package services contains the client-side workflows of the reposync CLI:
// account resolution and auth tokens, acquiring remote repos through the
// daemon, and rendering task state for status output.
package services
