// Package otel publishes tokenguard metrics through an OpenTelemetry Meter
// using observable instruments read from [tokenguard.Engine.MetricsSnapshot]
// on each collection.
package otel
