package main

import (
	"context"
	"os"

	"biasbuster-backend/internal/bootstrap"
	"biasbuster-backend/internal/shared/config"
	"biasbuster-backend/internal/shared/server"
	"biasbuster-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": app.Config.Env, "provider": app.Config.LLMProvider})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
