// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/gowebpki/jcs"
	"github.com/spf13/cobra"

	"github.com/aletheiaproj/aletheia/internal/provenance"
	"github.com/aletheiaproj/aletheia/internal/schema"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// outputOptions controls how results are printed.
type outputOptions struct {
	format    string
	canonical bool
	strict    bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", outputJSON, "output format: json or yaml")
	cmd.Flags().BoolVar(&o.canonical, "canonical", false, "print RFC 8785 canonical JSON")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "check every result against the result schema before printing")
}

func (o *outputOptions) validate() error {
	switch o.format {
	case outputJSON:
	case outputYAML:
		if o.canonical {
			return fmt.Errorf("--canonical requires --output json")
		}
	default:
		return fmt.Errorf("unknown output format %q (valid: json, yaml)", o.format)
	}
	return nil
}

// check validates results against the schema when strict output is on.
func (o *outputOptions) check(results ...provenance.VerificationResult) error {
	if !o.strict {
		return nil
	}
	for _, r := range results {
		if err := schema.Validate(r.JSON()); err != nil {
			return err
		}
	}
	return nil
}

// write encodes v, which must marshal to JSON, in the selected format.
func (o *outputOptions) write(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return o.writeJSON(w, raw)
}

// writeJSON prints an already encoded JSON document in the selected format.
func (o *outputOptions) writeJSON(w io.Writer, raw []byte) error {
	var out []byte
	switch {
	case o.format == outputYAML:
		y, err := yaml.JSONToYAML(raw)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		out = y
	case o.canonical:
		c, err := jcs.Transform(raw)
		if err != nil {
			return fmt.Errorf("failed to canonicalize output: %w", err)
		}
		out = append(c, '\n')
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		buf.WriteByte('\n')
		out = buf.Bytes()
	}
	_, err := w.Write(out)
	return err
}
