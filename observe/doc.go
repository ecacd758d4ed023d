// Package observe provides logging, metrics and tracing for the query store,
// mutations and API calls.
//
// It is a pure instrumentation library. The query client and the API client
// accept an Observer (or its Logger) and record through it; nothing in this
// package performs I/O beyond exporter setup and log writes.
package observe
