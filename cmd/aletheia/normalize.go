// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

func newNormalizeCmd(_ *app) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "normalize [FILE|-]",
		Short: "Normalize manifest store JSON already extracted by a verifier",
		Long: `Reads manifest store JSON text from FILE, or from stdin when FILE is "-" or
omitted, and prints the normalized result. Text that is not JSON produces a
result with status "error".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result := provenance.Normalize(string(text))
			if err := out.check(result); err != nil {
				return err
			}
			return out.writeJSON(cmd.OutOrStdout(), result.JSON())
		},
	}
	out.register(cmd)
	return cmd
}

// readInput reads the single file argument, or stdin for "-" or none.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}
