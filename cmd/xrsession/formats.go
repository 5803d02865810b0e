package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/xrsession/internal/appconfig"
	"pkt.systems/xrsession/schema"
)

func newFormatsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the swapchain formats a session would be offered",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			r, err := buildRig(ctx, cfg, nil)
			if err != nil {
				return err
			}
			session, err := r.newSession(ctx, schema.DefaultSessionConfig(), nil)
			if err != nil {
				return err
			}
			defer func() {
				if derr := session.Destroy(ctx); derr != nil {
					err = errors.Join(err, derr)
				}
			}()

			counted, err := session.EnumerateFormats(ctx, 0)
			if err != nil {
				return err
			}
			if counted.FormatCount == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no formats (headless)")
				return err
			}
			filled, err := session.EnumerateFormats(ctx, counted.FormatCount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, format := range filled.Formats {
				if _, err := fmt.Fprintln(out, format); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config path (default ~/.xrsession/config.yaml)")
	return cmd
}
