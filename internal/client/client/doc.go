// Package client is the caller side of the reposync daemon contract.
//
// # Overview
//
// The Client interface lists every daemon call in domain terms. GRPCClient
// implements it over the CBOR-encoded gRPC service, with a per-call
// timeout applied through a unary interceptor.
//
// # Error Handling
//
// Errors returned by GRPCClient are *common.Error values rebuilt from the
// gRPC status and its ErrorInfo detail, so callers match them with
// errors.Is against the common sentinels. A daemon that cannot be reached
// yields kind "transport"; errors.Is(err, ErrUnavailable) reports it.
//
// Shutdown treats a dropped connection as success: the daemon may exit
// before its reply is delivered.
package client
