package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <file-id>",
		Short: "Transcribe a stored file and print the transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.buildServices(cmd.Context(), prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer svc.close()

			if err := svc.tools.Preflight(); err != nil {
				return err
			}

			t, err := svc.transcriber.Transcribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, t)
		},
	}
}
