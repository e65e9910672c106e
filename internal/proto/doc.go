// Package proto defines the reposync daemon's RPC contract: the wire
// messages, the gRPC service descriptor, a typed client stub and the
// CBOR codec the messages travel in.
//
// Messages are plain Go structs; there is no generated code. Optional
// request fields are pointers so that "absent" stays distinguishable from
// the empty string (no passphrase vs. an empty passphrase).
package proto
