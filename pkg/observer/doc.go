// Package observer implements the Observer pattern for workflow execution
// monitoring: an Observer receives OnEvent notifications for workflow-start,
// workflow-end, node-start, node-success, and node-failure, carrying the
// execution/workflow/node ids, node type, timing, and any error. Manager
// fans one notification out to many registered observers; ConsoleObserver
// and NoOpObserver are the two ready-made implementations, and
// pkg/telemetry's TelemetryObserver is a third, recording OpenTelemetry
// spans and metrics from the same events.
package observer
