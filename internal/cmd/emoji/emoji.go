// Package emoji provides the status symbols printed in command summaries.
// Every command uses the same symbols so text output scans the same way.
package emoji

const (
	// Success marks a run that finished cleanly or a dataset without issues.
	Success = "✓"

	// Error marks an error-level validation issue or a failed dataset.
	Error = "✗"

	// Warning marks a warning-level issue or a run with skipped work.
	Warning = "!"

	// Info marks informational lines such as where progress was saved.
	Info = "i"
)
