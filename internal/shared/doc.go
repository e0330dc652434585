// Package shared holds code shared by tests across packages. Its testutil
// subpackage provides a buffered slog handler for asserting on log output and
// the measurement file fixtures (CSV text and in-memory XLSX workbooks) used
// by the ingest, service, handler and CLI tests.
package shared
