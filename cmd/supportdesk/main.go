// Command supportdesk is a multi-agent customer support assistant.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/ai"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/config/env"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/config/file"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driving/cli"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/services"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	overlay, err := env.NewOverlay(".env")
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, overlay, nil)
	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settingsSvc = services.NewSettingsService(configStore, overlay, ai.NewConfigValidator(settings.Transport))

	app := &application{settings: settingsSvc}
	defer app.Close()

	cli.SetVersion(version)
	cli.SetSettingsService(settingsSvc)
	cli.SetBootstrap(app.Bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		logger.Debug("command failed: %v", err)
		return err
	}
	return nil
}
