package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/concierge/concierge/internal/config"
	"github.com/concierge/concierge/internal/providers"
	"github.com/concierge/concierge/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show concierge status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s concierge Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:     %s\n", cfg.OpenAI.Model)
	backend := "sqlite (" + config.DataDir() + "/concierge.db)"
	if cfg.Database.URL != "" {
		backend = "postgres"
	}
	fmt.Printf("Database:  %s %s\n", backend, databaseMark(cfg))
	fmt.Printf("Weather:   %s\n", configuredMark(cfg.OpenWeatherMap.APIKey != ""))
	fmt.Printf("Telegram:  %s\n", configuredMark(cfg.Notifications.Telegram.Enabled))
	fmt.Printf("Slack:     %s\n\n", configuredMark(cfg.Notifications.Slack.Enabled))

	if cfg.OpenAI.APIKey == "" {
		fmt.Println("Provider:  ✗ no API key configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	provider := providers.New(cfg.OpenAI.APIKey, cfg.OpenAI.APIBase, cfg.OpenAI.Model)
	if err := provider.TestConnection(ctx); err != nil {
		fmt.Printf("Provider:  ✗ unreachable (%v)\n", err)
		return nil
	}
	fmt.Println("Provider:  ✓ reachable")
	return nil
}

func configuredMark(ok bool) string {
	if ok {
		return "✓ configured"
	}
	return "✗ not configured"
}

func databaseMark(cfg *config.Config) string {
	db, err := storage.Open(cfg)
	if err != nil {
		return fmt.Sprintf("✗ (%v)", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Sprintf("✗ (%v)", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		return fmt.Sprintf("✗ (%v)", err)
	}
	return "✓"
}
