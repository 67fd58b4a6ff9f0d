// Package tracing wraps OpenTelemetry so that workflow steps (submit, decide,
// finalize, expire) can be recorded as spans without importing otel directly.
// Until Init is called spans are no-ops.
package tracing
