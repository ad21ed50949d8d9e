// Package session models the presence of kitchen workers. A session is live while it is
// active and its last heartbeat lies within the liveness window; only live workers are
// expected to hold item claims.
package session
