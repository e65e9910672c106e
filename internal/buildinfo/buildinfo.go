// Package buildinfo holds values stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/reposync/internal/buildinfo.Version=1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// ProtocolVersion is the sync protocol version the daemon speaks. The
// handshake rejects servers older than this.
const ProtocolVersion = "2"

func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}

// ClientVersion is the version string reported to the remote API.
func ClientVersion() string {
	if Version == "N/A" {
		return "dev"
	}
	return Version
}
