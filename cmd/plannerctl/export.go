package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/export"
)

func newExportCmd(deps *cliDeps) *cobra.Command {
	var (
		format string
		output string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "export <serialized>",
		Short: "Render a serialized schedule as csv, xlsx, pdf or ics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := service.ParseExportFormat(format)
			if err != nil {
				return err
			}
			sched := schedule.New()
			if err := sched.LoadSerializedSchedule(cmd.Context(), args[0], deps.catalog); err != nil {
				return err
			}
			for _, warning := range sched.Warnings() {
				deps.logger.Warn("schedule warning", zap.String("warning", models.WarningMessage(warning)))
			}

			term, err := export.NewTerm(deps.cfg.Export.TermStart, deps.cfg.Export.TermWeeks, deps.cfg.Export.Timezone)
			if err != nil {
				return err
			}
			file, err := service.NewExportService(service.ExportConfig{Title: title, Term: term}, deps.logger).Render(sched, parsed)
			if err != nil {
				return err
			}

			if output == "" {
				output = file.Filename
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(file.Body)
				return err
			}
			if err := os.WriteFile(output, file.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(file.Body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, xlsx, pdf or ics")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output path, - for stdout (default: generated file name)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}
