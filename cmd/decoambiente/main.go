// Command decoambiente runs the Deco Ambiente catalog site and its admin API,
// and carries the maintenance tasks that go with it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/config"
	"github.com/decoambiente/decoambiente-backend/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	v          *viper.Viper
	cfg        config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "decoambiente",
		Short:         "Deco Ambiente catalog site and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.Flags())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	cmd.PersistentFlags().String("addr", "", "HTTP listen address")

	cmd.AddCommand(
		serveCmd(a),
		seedCmd(a),
		indexesCmd(a),
		importCmd(a),
		hashPasswordCmd(),
	)
	return cmd
}

func (a *app) load(flags *pflag.FlagSet) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	a.v = config.New()
	for key, name := range map[string]string{
		"log.level":   "log-level",
		"log.format":  "log-format",
		"server.addr": "addr",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)
	a.cfg = cfg
	return nil
}

func (a *app) mongoConfig() repository.MongoConfig {
	return repository.MongoConfig{
		URI:      a.cfg.Mongo.URI,
		Database: a.cfg.Mongo.Database,
		Timeout:  a.cfg.Mongo.Timeout,
	}
}

// connect is for the maintenance commands, which cannot run without the database.
func (a *app) connect(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	client, db, err := repository.Connect(ctx, a.mongoConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("database unavailable: %w", err)
	}
	return client, db, nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
}
