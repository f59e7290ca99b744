package config

import (
	"time"

	"github.com/spf13/viper"
)

// App holds the resolved application configuration assembled from viper.
type App struct {
	GatewayURL    string
	APIKey        string
	Account       string
	DatabasePath  string
	PrimaryEntity string
	PollInterval  time.Duration
	Timeout       time.Duration
}

// Defaults for tuning knobs. The poll interval and primary entity are
// deliberately configuration, not constants: which entity is "enough" to
// proceed on is a product decision per deployment.
const (
	DefaultPollInterval  = 5 * time.Second
	DefaultTimeout       = 30 * time.Second
	DefaultPrimaryEntity = "deals"
	DefaultDatabasePath  = "~/.local/share/glint/glint.db"
)

// FromViper assembles the application config from the loaded viper state.
func FromViper() App {
	app := App{
		GatewayURL:    viper.GetString("gateway.url"),
		APIKey:        viper.GetString("gateway.api_key"),
		Account:       viper.GetString("gateway.account"),
		DatabasePath:  viper.GetString("database.path"),
		PrimaryEntity: viper.GetString("sync.primary_entity"),
		PollInterval:  viper.GetDuration("sync.poll_interval"),
		Timeout:       viper.GetDuration("gateway.timeout"),
	}

	if app.DatabasePath == "" {
		app.DatabasePath = DefaultDatabasePath
	}
	app.DatabasePath = ExpandPath(app.DatabasePath)

	if app.PrimaryEntity == "" {
		app.PrimaryEntity = DefaultPrimaryEntity
	}
	if app.PollInterval <= 0 {
		app.PollInterval = DefaultPollInterval
	}
	if app.Timeout <= 0 {
		app.Timeout = DefaultTimeout
	}

	return app
}
