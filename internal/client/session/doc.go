// Package session owns the client's authenticated identity.
//
// A Service is constructed once at startup and passed explicitly to every
// consumer. It holds the in-memory Session (user + bearer token), writes it
// through to the credential store on every transition, and validates a
// previously stored credential on Restore.
//
// Transitions:
//
//	Unauthenticated --Restore(valid)/Login/AdminLogin--> Authenticated
//	Authenticated   --Logout/forced invalidation-------> Unauthenticated
//
// Forced invalidation happens in the transport layer, which only clears the
// store. The top-level handler that observes common.ErrSessionInvalidated
// calls Restore to bring memory back in line.
package session
