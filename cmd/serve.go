package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fzft/bucketmap/config"
	"github.com/fzft/bucketmap/db"
	"github.com/fzft/bucketmap/log"
	"github.com/fzft/bucketmap/node"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signalCh)
			go func() {
				select {
				case <-signalCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := log.InitLogger(conf.Log.Level, conf.Log.Development); err != nil {
				return err
			}
			defer log.Sync()

			keyspace, err := newKeyspace(conf)
			if err != nil {
				return err
			}
			log.Logger.Info("starting server",
				zap.String("addr", conf.Server.Addr),
				zap.Int("buckets", conf.Table.Buckets),
				zap.String("hasher", conf.Table.Hasher),
				zap.Int("max_keys", conf.Table.MaxKeys))
			return node.NewServer(conf.Server.Addr, keyspace).Run(ctx)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Config file (default $"+config.CONFIG_ENV+" or the user config dir)")
	cmd.Flags().StringP("addr", "a", config.DEFAULT_ADDR, "Address to listen on")
	return cmd
}

// loadConfig reads --config, or the default location, and applies --addr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		conf *config.Config
		err  error
	)
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		conf, err = config.Load(path)
	} else {
		conf, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		conf.Server.Addr = f.Value.String()
		if err := conf.Validate(); err != nil {
			return nil, err
		}
	}
	return conf, nil
}

func newKeyspace(conf *config.Config) (*db.DB, error) {
	opts, err := conf.DBOptions()
	if err != nil {
		return nil, err
	}
	return db.NewWithOpts(0, opts), nil
}
