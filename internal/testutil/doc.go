// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that handle errors appropriately,
// reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include file fixtures (MustWriteFile, WriteTree), environment
// management (MustSetenv, SetConfigHome) and a recording host (RecordingHost) that
// captures loader diagnostics.
package testutil
