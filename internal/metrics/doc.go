// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Session state, starts and transport errors
//   - Frame rates, drops and decoded quotes
//   - Handler failures and control frames sent
//   - Writer rows and errors per sink
//
// A nil *Metrics is valid and records nothing, so library code can be used
// without a registry.
package metrics
