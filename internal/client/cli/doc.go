// Package cli provides the interactive postboard terminal client.
//
// It wires configuration, the local credential store, the authenticated HTTP
// pipeline, the session service and the router, then runs a REPL. Each
// command acts on the session and navigates to a page; pages are resolved
// through the router, so guarded pages redirect exactly as they would in the
// browser.
//
// Commands: help, go <path>, login, admin-login, register, logout, forgot,
// reset, passwd, profile, refresh, whoami, exit.
//
// Every command result goes through App.handleError. When the backend
// rejected the held token, the transport has already cleared the store; the
// handler restores the session from it and navigates to /login.
package cli
