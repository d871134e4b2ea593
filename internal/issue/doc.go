// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the file involved and remediation
// hints. The Issue catalog holds longer Markdown guidance per loader error class,
// rendered with glamour when the CLI reports a failure.
package issue
