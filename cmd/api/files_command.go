package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"soundblast/internal/model"
	"soundblast/internal/service"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect stored media files",
	}
	cmd.AddCommand(newFilesListCommand(ctx))
	return cmd
}

func newFilesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored files",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := ctx.openBlobStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			files, err := service.NewFileService(store, ctx.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, files)
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFileTable(files))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")
	return cmd
}

func renderFileTable(files []model.StoredFile) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Filename", "Type", "Size", "Thumbnail"})

	var total int64
	for _, f := range files {
		thumb := f.Metadata.Thumbnail
		if thumb == "" {
			thumb = "-"
		}
		tw.AppendRow(table.Row{f.ID, f.Filename, f.Metadata.ContentType, humanize.Bytes(uint64(max(f.Length, 0))), thumb})
		total += f.Length
	}
	tw.AppendFooter(table.Row{"", strconv.Itoa(len(files)) + " files", "", humanize.Bytes(uint64(max(total, 0))), ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
