// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheiaproj/aletheia/internal/schema"
)

func newValidateCmd(_ *app) *cobra.Command {
	var printSchema bool

	cmd := &cobra.Command{
		Use:   "validate [FILE|-]",
		Short: "Check a result document against the result schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				_, err := fmt.Fprint(cmd.OutOrStdout(), schema.Source())
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if err := schema.Validate(data); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	cmd.Flags().BoolVar(&printSchema, "print-schema", false, "print the CUE schema and exit")
	return cmd
}
