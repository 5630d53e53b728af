package commands

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/pkg/core/services"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// ListRunsCmd creates the listRuns command
func ListRunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRuns",
		Short: "List saved admission runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listRuns command")

			runs, err := services.ListRuns(app.Ctx, app.Store, app.Logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No saved runs.")
				return nil
			}

			table := newTable(w, []string{"Run ID", "Created", "Source", "Strategy", "Priority", "Students"})
			for _, r := range runs {
				table.Append([]string{
					r.ID,
					r.CreatedAt.Local().Format(time.DateTime),
					r.Source,
					r.Strategy,
					r.Priority,
					strconv.Itoa(r.StudentCount),
				})
			}
			table.Render()
			return nil
		},
	}
}

// ViewRunCmd creates the viewRun command
func ViewRunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewRun [run_id]",
		Short: "Show a saved run (defaults to the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) > 0 {
				runID = args[0]
			}
			quiet, _ := cmd.Flags().GetBool("quiet")

			app.Logger.Debug("viewRun command", zap.String("run_id", runID))

			result, err := services.ViewRun(app.Ctx, app.Store, app.Logger, runID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			run := result.Run
			headingColor.Fprintf(w, "\nRun %s\n", run.ID)
			fmt.Fprintf(w, "Created:  %s\n", run.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(w, "Source:   %s\n", run.Source)
			fmt.Fprintf(w, "Strategy: %s (%s)\n\n", run.Strategy, run.Priority)

			if !quiet {
				table := newTable(w, []string{"学号", "姓名", "分数", "志愿选择", "录取专业"})
				for _, p := range result.Placements {
					table.Append([]string{p.StudentID, p.Name, roster.FormatScore(p.Priority), p.Code, colorOutcome(p.Outcome)})
				}
				table.Render()
			}

			majors := newTable(w, []string{"Major", "Quota", "Taken"})
			for _, major := range services.SortedMajors(run) {
				majors.Append([]string{major, strconv.Itoa(run.Quotas[major]), strconv.Itoa(result.MajorCounts[major])})
			}
			majors.Render()

			for _, status := range slices.Sorted(maps.Keys(result.StatusCounts)) {
				fmt.Fprintf(w, "%s: %d\n", status, result.StatusCounts[status])
			}
			return nil
		},
	}

	cmd.Flags().BoolP("quiet", "q", false, "Only print the per-major counts")

	return cmd
}
