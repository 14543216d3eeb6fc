/*
Copyright © 2026 the buoyingest authors.
This file is part of buoyingest.

buoyingest is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

buoyingest is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with buoyingest.  If not, see <http://www.gnu.org/licenses/>.
*/

package buoyingest

import (
	"errors"
	"fmt"
	"strings"
)

// QCError indicates that a quality-control test failed with a fatal error.
// The pipeline must not write output for the current dataset when a QCError
// occurs; callers distinguish it from other failures with IsQCError.
type QCError struct {
	msg string
}

// NewQCError creates a fatal quality-control failure with the given message.
func NewQCError(format string, args ...interface{}) *QCError {
	return &QCError{msg: fmt.Sprintf(format, args...)}
}

func (e *QCError) Error() string { return e.msg }

// IsQCError reports whether err is, or wraps, a fatal quality-control
// failure.
func IsQCError(err error) bool {
	var qc *QCError
	return errors.As(err, &qc)
}

// KeyNotFoundError indicates that a variable that is required to be present
// in a raw dataset is missing. This always means the input file is
// structurally broken, so it is fatal and is never silently skipped.
type KeyNotFoundError struct {
	// Key is the name of the missing variable.
	Key string
	// File is the standardized name of the raw file the variable was
	// expected in. It may be empty if the dataset is not file-backed.
	File string
}

func (e *KeyNotFoundError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("buoyingest: variable %q not found in dataset", e.Key)
	}
	return fmt.Sprintf("buoyingest: variable %q not found in dataset %q", e.Key, e.File)
}

// IsKeyNotFound reports whether err is, or wraps, a missing-variable failure.
func IsKeyNotFound(err error) bool {
	var k *KeyNotFoundError
	return errors.As(err, &k)
}

// SchemaValidationError aggregates every global-attribute constraint
// violation found while constructing a GlobalAttributes instance, so a
// user can fix their configuration file in one pass instead of one
// failure at a time.
type SchemaValidationError struct {
	Violations []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("buoyingest: %d invalid global attribute(s):\n\t%s",
		len(e.Violations), strings.Join(e.Violations, "\n\t"))
}

// IsSchemaValidation reports whether err is, or wraps, a global-attribute
// schema failure.
func IsSchemaValidation(err error) bool {
	var s *SchemaValidationError
	return errors.As(err, &s)
}
