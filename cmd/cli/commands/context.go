package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/clients/sheetsclient"
	"github.com/jakechorley/major-admission/pkg/db"
	"github.com/jakechorley/major-admission/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context
	// Store is nil when no database is configured
	Store db.RunStore

	sheetsClient *sheetsclient.Client
}

// SheetsClient returns the Google Sheets client, authenticating on first use so
// an interactive session only goes through OAuth once
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	tokens, err := utils.NewTokenStore("", app.Logger)
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, tokens, app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	app.sheetsClient = client
	return client, nil
}
