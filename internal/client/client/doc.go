// Package client is the typed REST client for the bulletin-board auth gateway.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     auth exchanges: Login, AdminLogin, Register, Logout, ForgotPassword,
//     ResetPassword, ChangePassword, UpdateProfile and Me.
//  2. A JSON-over-HTTP implementation (see HTTPClient). Bearer injection and
//     forced logout on 401 live in the transport package; HTTPClient marks the
//     public exchanges as anonymous so bad credentials never look like a
//     revoked session.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite database that backs the credential store.
//
// # Error Handling
//
// Non-2xx answers become *APIError, which unwraps to ErrUnauthorized,
// ErrForbidden or ErrUnavailable. Network failures wrap ErrUnavailable.
// A forced logout surfaces as common.ErrSessionInvalidated.
package client
