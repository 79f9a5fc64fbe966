// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
)

type statsOutput struct {
	ImagesChecked    int64   `json:"images_checked"`
	CredentialsFound int64   `json:"credentials_found"`
	SuccessRate      float64 `json:"success_rate"`
}

func newStatsCmd(a *app) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print verification counters",
		Long: `Prints how many images were checked, how many carried content credentials
and the success rate. Counters persist only when stats.path is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			store, err := a.openStats()
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), statsOutput{
				ImagesChecked:    st.ImagesChecked,
				CredentialsFound: st.CredentialsFound,
				SuccessRate:      st.SuccessRate(),
			})
		},
	}
	cmd.Flags().StringVarP(&out.format, "output", "o", outputJSON, "output format: json or yaml")
	return cmd
}
