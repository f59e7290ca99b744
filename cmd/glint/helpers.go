package main

import (
	"log/slog"

	"github.com/glintlabs/glint/internal/common"
	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/gateway"
	"github.com/glintlabs/glint/internal/onboarding"
	"github.com/glintlabs/glint/internal/service"
	"github.com/glintlabs/glint/internal/storage"
)

// newGateway builds the remote gateway client from the loaded configuration.
func newGateway(app config.App) (*gateway.Client, error) {
	client, err := gateway.NewClient(gateway.Config{
		BaseURL: app.GatewayURL,
		APIKey:  app.APIKey,
		Account: app.Account,
		Timeout: app.Timeout,
	})
	if err != nil {
		return nil, common.NewUserError(
			"glint is not configured; set gateway.url and gateway.api_key in "+
				"~/.config/glint/config.yaml or via GLINT_GATEWAY_URL / GLINT_GATEWAY_API_KEY",
			err)
	}
	return client, nil
}

// newPreferenceStore opens the local preference database. A nil store is
// returned on failure so preferences degrade gracefully instead of blocking
// the dashboard.
func newPreferenceStore(app config.App) service.PreferenceStore {
	store, err := storage.NewSQLiteStore(app.DatabasePath)
	if err != nil {
		slog.Warn("Preference store unavailable, preferences will not persist",
			"path", app.DatabasePath, "error", err)
		return nil
	}
	return store
}

// newDemoGateway satisfies the gateway interface for demo mode, which never
// issues a real request.
func newDemoGateway() service.Gateway {
	return gateway.NewMockGateway()
}

// onboardingOptions maps configuration onto the state machine's tuning knobs.
func onboardingOptions(app config.App) onboarding.Options {
	return onboarding.Options{
		PrimaryEntity: app.PrimaryEntity,
		PollInterval:  app.PollInterval,
	}
}
