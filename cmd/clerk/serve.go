package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/shopclerk/internal/catalog"
	"github.com/zulandar/shopclerk/internal/clerk"
	discordadapter "github.com/zulandar/shopclerk/internal/clerk/discord"
	slackadapter "github.com/zulandar/shopclerk/internal/clerk/slack"
	"github.com/zulandar/shopclerk/internal/config"
	"github.com/zulandar/shopclerk/internal/dashboard"
	"github.com/zulandar/shopclerk/internal/db"
	"github.com/zulandar/shopclerk/internal/order"
)

// Environment variable names for platform credentials. Tokens never live
// in the config file.
const (
	envBotToken = "SHOPCLERK_BOT_TOKEN"
	envAppToken = "SHOPCLERK_APP_TOKEN"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront bot",
		Long:  "Connects to the configured chat platform, serves the product menu, and records orders until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "clerk.yaml", "path to Shopclerk config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	botToken := os.Getenv(envBotToken)
	if botToken == "" {
		return fmt.Errorf("serve: %s is not set; export the bot token before starting", envBotToken)
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	adapter, err := createAdapter(cfg, botToken)
	if err != nil {
		return err
	}

	daemon, err := clerk.NewDaemon(clerk.DaemonOpts{
		Config:  cfg,
		Adapter: adapter,
		Catalog: cat,
		Orders:  store,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Dashboard.Enabled {
		go func() {
			if err := dashboard.Start(ctx, dashboard.StartOpts{
				Store: store,
				Port:  cfg.Dashboard.Port,
				Out:   cmd.OutOrStdout(),
			}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "dashboard: %v\n", err)
			}
		}()
	}

	return daemon.Run(ctx)
}

// buildCatalog converts config products into the runtime catalog.
func buildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	products := make([]catalog.Product, len(cfg.Catalog))
	for i, p := range cfg.Catalog {
		products[i] = catalog.Product{
			Code:        p.Code,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
		}
	}
	cat, err := catalog.New(products)
	if err != nil {
		return nil, fmt.Errorf("serve: build catalog: %w", err)
	}
	return cat, nil
}

// openStore builds the order store for the configured backend.
func openStore(cfg *config.Config) (order.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		return order.NewFileStore(order.FileStoreOpts{Path: cfg.Store.Path})
	case "sqlite":
		gormDB, err := db.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("serve: open sqlite store: %w", err)
		}
		return order.NewDBStore(order.DBStoreOpts{DB: gormDB})
	case "mysql":
		gormDB, err := db.OpenMySQL(cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("serve: open mysql store: %w", err)
		}
		return order.NewDBStore(order.DBStoreOpts{DB: gormDB})
	default:
		return nil, fmt.Errorf("serve: unsupported store backend %q", cfg.Store.Backend)
	}
}

// createAdapter builds a platform adapter from the config and tokens.
func createAdapter(cfg *config.Config, botToken string) (clerk.Adapter, error) {
	switch cfg.Platform {
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  botToken,
			ChannelID: cfg.Channel,
		})
	case "slack":
		appToken := os.Getenv(envAppToken)
		if appToken == "" {
			return nil, fmt.Errorf("serve: %s is not set; slack socket mode needs an app-level token", envAppToken)
		}
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  appToken,
			BotToken:  botToken,
			ChannelID: cfg.Channel,
		})
	default:
		return nil, fmt.Errorf("serve: unsupported platform %q", cfg.Platform)
	}
}
