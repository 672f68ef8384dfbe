// Package cli defines the chatinsights command tree.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/logger"
	"chat-insights-go/internal/pipeline"
)

type app struct {
	cfg *config.Config
	log *logrus.Entry
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "chatinsights",
		Short:         "Chat analytics for CRM support conversations",
		Long:          "Fetches support conversations from the CRM, computes response and sales-behavior metrics, and publishes them as a spreadsheet workbook plus a weekly digest.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New().WithRun()
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Fetch the window and publish raw data, aggregates and advice",
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.New(a.cfg, a.log).Export(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "digest",
			Short: "Snapshot the current run and publish week-over-week deltas",
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.New(a.cfg, a.log).Digest(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Full pass: export and digest from one fetch",
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.New(a.cfg, a.log).Run(cmd.Context())
			},
		},
	)
	return root
}
