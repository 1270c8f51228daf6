// Package credential pulls access and refresh tokens out of an HTTP request.
package credential
