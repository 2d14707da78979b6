/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schema validates serialized projects against the embedded JSON Schema
// before they are decoded.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed project.schema.json
var projectSchema []byte

// ErrFormat marks input that is not a well-formed project.
var ErrFormat = errors.New("invalid project format")

// FormatError lists why a document was rejected.
type FormatError struct {
	Problems []string
	// Cause is set for decode failures that are not schema violations.
	Cause error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFormat.Error())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.Cause }

// Wrap turns a decode or invariant failure into a FormatError.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	return &FormatError{Cause: err}
}

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(projectSchema))
	})
	return compiled, compileErr
}

// Validate checks data against the project schema. Any problem, including
// input that is not JSON at all, is reported as a *FormatError.
func Validate(data []byte) error {
	s, err := loadSchema()
	if err != nil {
		return fmt.Errorf("compile project schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &FormatError{Cause: err}
	}
	if result.Valid() {
		return nil
	}
	fe := &FormatError{}
	for _, e := range result.Errors() {
		fe.Problems = append(fe.Problems, e.String())
	}
	return fe
}
