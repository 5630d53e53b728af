package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jakechorley/major-admission/pkg/core/services"
)

// QuotasCmd creates the quotas command
func QuotasCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quotas",
		Short: "Show majors, quotas and the preference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alloc, err := services.NewAllocator(app.Cfg, "", 0)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			quotas := alloc.OriginalQuotas()

			headingColor.Fprintf(w, "\nMajors (priority: %s, strategy: %s)\n", alloc.Priority(), alloc.Strategy())
			table := newTable(w, []string{"Major", "Quota"})
			for _, major := range alloc.Majors() {
				table.Append([]string{major, strconv.Itoa(quotas[major])})
			}
			table.SetFooter([]string{"Total", strconv.Itoa(quotas.Total())})
			table.Render()

			headingColor.Fprintln(w, "\nPreference table")
			header := []string{"Code"}
			for i := range alloc.Majors() {
				header = append(header, "Choice "+strconv.Itoa(i+1))
			}
			prefs := newTable(w, header)
			for _, code := range alloc.Table().Codes() {
				majors, err := alloc.Table().Resolve(code)
				if err != nil {
					return err
				}
				prefs.Append(append([]string{string(code)}, majors...))
			}
			prefs.Render()

			if app.Cfg.FoldCase {
				fmt.Fprintln(w, "Preference codes are matched case-insensitively.")
			} else {
				fmt.Fprintln(w, "Preference codes are case-sensitive.")
			}
			return nil
		},
	}
}
