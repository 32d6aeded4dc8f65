// Package metrics provides build metrics for tsc-dual-build.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default so callers never nil-check; PrometheusRecorder is activated by
// the --metrics-file flag and its registry is dumped in the Prometheus text
// exposition format after the run (see WriteTextfile), which suits node
// exporter's textfile collector in CI.
package metrics
