package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltbill/internal/bill"
	"github.com/smallbiznis/voltbill/internal/clock"
	"github.com/smallbiznis/voltbill/internal/config"
	"github.com/smallbiznis/voltbill/internal/consumption"
	"github.com/smallbiznis/voltbill/internal/customer"
	"github.com/smallbiznis/voltbill/internal/ingest"
	"github.com/smallbiznis/voltbill/internal/migration"
	"github.com/smallbiznis/voltbill/internal/observability"
	"github.com/smallbiznis/voltbill/internal/providers/pdf"
	"github.com/smallbiznis/voltbill/internal/providers/storage"
	"github.com/smallbiznis/voltbill/internal/ratelimit"
	"github.com/smallbiznis/voltbill/internal/report"
	"github.com/smallbiznis/voltbill/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:   "voltbill",
	Short: "Electricity consumption billing",
	Long: `voltbill imports meter exports, derives one bill per customer and month
and renders bill reports as PDF.`,
	SilenceUsage: true,
}

// coreModules wires everything except the HTTP server.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(provideDBConfig),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,

		customer.Module,
		consumption.Module,
		bill.Module,
		ingest.Module,
		pdf.Module,
		storage.Module,
		report.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}

func provideDBConfig(cfg config.Config, obs observability.Config) db.Config {
	return db.Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		Path:            cfg.DBPath,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		TracingEnabled:  obs.OtelEnabled,
		MetricsEnabled:  obs.PrometheusEnabled,
	}
}

// startApp builds the core graph, fills targets and starts the lifecycle.
// The returned stop func must be called once the command is done.
func startApp(ctx context.Context, targets ...any) (func(), error) {
	app := fx.New(
		coreModules(),
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		_ = app.Stop(context.Background())
	}, nil
}
