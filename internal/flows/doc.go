// Package flows holds the token lifecycle state machines behind Engine:
// RunRefresh, RunAuthenticate and RunRevoke.
//
// Each flow takes a dependency struct of functions and stores and returns a
// result with a failure kind instead of a root error, so this package never
// imports the root package. The Engine owns every resource and maps failure
// kinds onto its sentinel errors, metrics and audit events.
package flows
