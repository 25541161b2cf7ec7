package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
)

func newCheckCmd(deps *cliDeps) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <serialized>",
		Short: "Load a serialized schedule and report sections, totals and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched := schedule.New()
			if err := sched.LoadSerializedSchedule(cmd.Context(), args[0], deps.catalog); err != nil {
				return err
			}
			printSchedule(cmd.OutOrStdout(), sched)
			if strict && len(sched.Warnings()) > 0 {
				return fmt.Errorf("%d warning(s) raised while loading", len(sched.Warnings()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when loading raised warnings")
	return cmd
}

func printSchedule(out io.Writer, sched *schedule.Schedule) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tCREDITS\tOPEN\tINSTRUCTORS\tMEETINGS")
	for _, section := range sched.Sections() {
		fmt.Fprintf(w, "%s\t%d\t%d/%d\t%s\t%s\n",
			section.ID,
			section.Credits(),
			section.OpenSeats,
			section.TotalSeats,
			strings.Join(section.Instructors, ", "),
			meetingSummary(section),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal credits: %d\n", sched.TotalCredits())
	fmt.Fprintf(out, "Average GPA:   %.2f\n", sched.AverageGPA())
	fmt.Fprintf(out, "Serialized:    %s\n", sched.SerializedSchedule())

	if warnings := sched.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, warning := range warnings {
			fmt.Fprintf(out, "  - %s\n", models.WarningMessage(warning))
		}
	}
}

func meetingSummary(section *models.Section) string {
	formatted := section.FormattedWeeklySchedule()
	if len(formatted) == 0 {
		return "no scheduled meetings"
	}
	parts := make([]string, 0, len(formatted))
	for span, days := range formatted {
		parts = append(parts, days+" "+span)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
