// SPDX-License-Identifier: Apache-2.0

// Package schema validates serialized verification results against the
// embedded CUE definition.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-json"
)

//go:embed result.cue
var source []byte

// Definition is the CUE definition checked by Validate.
const Definition = "#VerificationResult"

var (
	loadOnce   sync.Once
	definition cue.Value
	loadErr    error
	// cue.Context is not safe for concurrent use.
	validateMu sync.Mutex
)

func load() (cue.Value, error) {
	loadOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileBytes(source, cue.Filename("result.cue"))
		if err := v.Err(); err != nil {
			loadErr = fmt.Errorf("compile result schema: %w", err)
			return
		}
		definition = v.LookupPath(cue.ParsePath(Definition))
		if err := definition.Err(); err != nil {
			loadErr = fmt.Errorf("lookup %s: %w", Definition, err)
		}
	})
	return definition, loadErr
}

// Source returns the CUE text of the schema.
func Source() string {
	return string(source)
}

// Validate checks that data is a JSON verification result document.
func Validate(data []byte) error {
	def, err := load()
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("result is not valid JSON")
	}

	validateMu.Lock()
	defer validateMu.Unlock()
	doc := def.Context().CompileBytes(data, cue.Filename("result.json"))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("compile result: %w", err)
	}
	if err := def.Unify(doc).Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("result does not match %s: %w", Definition, err)
	}
	return nil
}
