// Package prometheus renders tokenguard metrics in the Prometheus text
// format. Mount [Exporter.Handler] on the metrics route; nothing is
// registered globally.
package prometheus
