// SPDX-License-Identifier: MPL-2.0

// Package console is the terminal host of the taskconf CLI.
//
// A Console receives the loader's line diagnostics, styles them with lipgloss and
// exposes the --opt values of the command line to script factories. Warnings and fatal
// failures go through a charmbracelet/log logger.
package console
