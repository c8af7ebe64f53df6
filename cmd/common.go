package cmd

import (
	"fmt"
	"sync"

	"prdpilot/pkg/api"
	"prdpilot/pkg/config"
	"prdpilot/pkg/events"
	"prdpilot/pkg/logging"
)

var (
	busOnce sync.Once
	bus     *events.Bus
)

// eventBus returns the process-wide event bus. Every event is also
// mirrored to the log file.
func eventBus() *events.Bus {
	busOnce.Do(func() {
		bus = events.NewBus()
		ch := bus.Subscribe("logger")
		go func() {
			logger := logging.GetLogger()
			for ev := range ch {
				logger.Logf("event %s project=%s", ev.Type, ev.ProjectID)
			}
		}()
	})
	return bus
}

// loadConfig loads the configuration with command-line overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrInit()
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveProject picks the project id from the flag or the config.
func resolveProject(cfg *config.Config) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}
	if cfg.ProjectID != "" {
		return cfg.ProjectID, nil
	}
	return "", fmt.Errorf("no project id: pass --project or set project_id in %s", config.Path())
}

// newClient builds the API client from the configuration.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, cfg.APIKey,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logging.GetLogger()),
	)
}
