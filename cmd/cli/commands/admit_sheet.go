package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/pkg/clients/sheetsclient"
	"github.com/jakechorley/major-admission/pkg/core/services"
)

// AdmitSheetCmd creates the admitSheet command
func AdmitSheetCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admitSheet",
		Short: "Allocate majors for the configured Google Sheet and write the results tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.Sheets == nil {
				return fmt.Errorf("no sheets section in config for environment %s", app.Env)
			}
			opts, err := admitOptions(cmd)
			if err != nil {
				return err
			}

			app.Logger.Debug("admitSheet command", zap.String("spreadsheet_id", app.Cfg.Sheets.SpreadsheetID))

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}
			sheet := sheetsclient.NewRoster(client, *app.Cfg.Sheets)

			result, err := services.Admit(app.Ctx, sheet, sheet, app.Store, app.Cfg, app.Logger, opts)
			if err != nil {
				return err
			}

			return reportAdmit(cmd, result, "tab "+app.Cfg.Sheets.ResultsTab)
		},
	}

	addAdmitFlags(cmd)

	return cmd
}
