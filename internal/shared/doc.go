// Package shared holds helpers used by more than one package of the dashboard.
//
// The testutil subpackage provides a capturing slog handler and builders for
// sector fixture files (xlsx and csv) written into a test's temp directory.
// Nothing here may import domain packages other than pkg/contracts.
package shared
