// Package instrumentation provides OpenTelemetry metrics for inboxtidy.
//
// Metrics are recorded through the OTel metric API and exported to stdout
// at the end of a run when metrics are enabled. A disabled provider records
// nothing and costs nothing, so callers can pass the Metrics recorder
// around unconditionally.
package instrumentation
