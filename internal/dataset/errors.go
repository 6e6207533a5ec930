// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"fmt"
)

// FormatError reports a file whose structure cannot be interpreted: the
// separator cannot be inferred or the column count is outside the
// accepted set. It aborts loading of that file only.
type FormatError struct {
	File   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s: %s", e.File, e.Reason)
}

// DateParseError reports an unparseable date in a single row. It is
// row-level and non-fatal: the row is dropped and the load continues.
type DateParseError struct {
	File  string
	Line  int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q at %s:%d", e.Value, e.File, e.Line)
}

// InvalidParameterError reports a caller-supplied parameter outside its
// valid range (cluster count, top_n, and similar).
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// NotFoundError reports an entity with no data in the current snapshot,
// such as a customer with no transaction history.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
