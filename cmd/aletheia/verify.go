// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/aletheiaproj/aletheia/internal/batch"
	"github.com/aletheiaproj/aletheia/internal/engine"
	"github.com/aletheiaproj/aletheia/internal/provenance"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		out           outputOptions
		mediaType     string
		sidecar       bool
		concurrency   int
		engineCommand string
	)

	cmd := &cobra.Command{
		Use:   "verify FILE|URL...",
		Short: "Verify the content credentials of media files or URLs",
		Long: `Runs the trust verification engine over each file and prints its result.
Arguments starting with http:// or https:// are fetched first; a failed
fetch yields an error result such as "Failed to fetch image: 404".
One argument prints a single result; several print a list of
{path, result} entries in argument order.

With --sidecar the manifest store is read from FILE` + engine.SidecarSuffix + ` instead of
running the engine.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("engine") {
				a.cfg.Engine.Command = engineCommand
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Batch.Concurrency
			}

			var eng engine.Engine = a.execEngine()
			if sidecar {
				eng = engine.Sidecar{}
			}
			svc, closeSvc, err := a.newService(eng, false)
			if err != nil {
				return err
			}
			defer closeSvc()

			items := batch.Run(cmd.Context(), svc, batch.Paths(args, mediaType), concurrency)

			results := make([]provenance.VerificationResult, len(items))
			for i, item := range items {
				results[i] = item.Result
			}
			if err := out.check(results...); err != nil {
				return err
			}
			if len(items) == 1 {
				return out.writeJSON(cmd.OutOrStdout(), items[0].Result.JSON())
			}
			return out.write(cmd.OutOrStdout(), items)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&mediaType, "media-type", "", "media type of the files; detected when omitted")
	cmd.Flags().BoolVar(&sidecar, "sidecar", false, "read pre-extracted manifests from FILE"+engine.SidecarSuffix)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", batch.DefaultConcurrency, "files verified in parallel")
	cmd.Flags().StringVar(&engineCommand, "engine", "", "verifier command, overriding engine.command")
	return cmd
}
