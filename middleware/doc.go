// Package middleware adapts a tokenguard.Engine to net/http.
//
//   - [Authenticate] and [Optional] gate handlers on the access token and
//     attach the [tokenguard.AuthResult] to the request context.
//   - [Handlers] serves the refresh and logout endpoints, delivering tokens
//     as JSON and signed cookies.
//   - [ClientIP] records the caller's address for throttling and audit.
//
// All token decisions are delegated to the engine.
package middleware
