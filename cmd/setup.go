package cmd

import (
	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
	"github.com/iksnae/ragchat/internal/app"
)

// resolvedAPIURL is the backend URL of the last loaded configuration, used
// for error hints
var resolvedAPIURL string

// loadConfig resolves the configuration and applies the persistent flags
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolvedAPIURL = cfg.APIURL
	return cfg, nil
}

// openShell wires the local store, license gate and backend client. The
// returned cleanup closes the database.
func openShell() (*app.Shell, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	kv, err := internal.OpenSQLiteKV(cfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}
	internal.LogDebug("Using database %s", kv.Path())

	gate := internal.NewLicenseGate(kv)
	if gate.Seed(cfg.LicenseKey) {
		internal.LogDebug("Using license key from configuration")
	}

	client := api.NewClient(cfg.APIURL, gate, api.WithUserAgent("ragchat/"+version))
	store := internal.NewSessionStore(kv, internal.WithMaxSessions(cfg.MaxSessions))

	shell := app.New(app.Options{
		Store:    store,
		Gate:     gate,
		Backend:  client,
		KV:       kv,
		Notifier: cliNotifier,
		Defaults: cfg.DefaultSettings(),
		APIURL:   cfg.APIURL,
	})
	shell.Load()

	cleanup := func() {
		shell.Close()
		if err := kv.Close(); err != nil {
			internal.LogWarn("Failed to close database: %v", err)
		}
	}
	return shell, cleanup, nil
}

var cliNotifier = app.NotifierFunc(func(level app.Level, message string) {
	switch level {
	case app.LevelSuccess:
		internal.PrintSuccess(message)
	case app.LevelWarning:
		internal.PrintWarning(message)
	case app.LevelError:
		internal.PrintError(message)
	default:
		internal.PrintInfo(message)
	}
})
