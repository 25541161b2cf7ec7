package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCourseCmd(deps *cliDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "course <code>",
		Short: "Show a course with its sections and meeting times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := deps.catalog.ResolveCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", course.Code, course.Name)
			fmt.Fprintf(out, "Credits: %d  Average GPA: %.2f\n", course.Credits, course.GPA())
			if len(course.GenEds) > 0 {
				fmt.Fprintf(out, "Gen-eds: %s\n", strings.Join(course.GenEds, ", "))
			}
			fmt.Fprintln(out)

			numbers := make([]string, 0, len(course.Sections))
			for number := range course.Sections {
				numbers = append(numbers, number)
			}
			sort.Strings(numbers)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SECTION\tOPEN\tINSTRUCTORS\tMEETINGS")
			for _, number := range numbers {
				section := course.Sections[number]
				fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\n",
					section.ID,
					section.OpenSeats,
					section.TotalSeats,
					strings.Join(section.Instructors, ", "),
					meetingSummary(section),
				)
			}
			return w.Flush()
		},
	}
}
