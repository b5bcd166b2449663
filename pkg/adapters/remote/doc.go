// Package remote exposes a license authority over HTTP and provides the
// matching client.
//
// Every operation is a POST of {"code", "machineId"} to /v1/licenses/{op}
// answered with {"status", "info"}. The client never returns errors: failures
// to reach or understand the server become network_error and server_error.
package remote
