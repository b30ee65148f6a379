package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"orders-management/internal/cli"
	"orders-management/internal/config"
	"orders-management/internal/datastore"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return cli.ExitCommandError
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		return cli.ExitCommandError
	}
	log := logrus.NewEntry(logger)

	dsCfg, err := cfg.DataStoreConfig(log)
	if err != nil {
		log.WithError(err).Error("invalid data store configuration")
		return cli.ExitCommandError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Open: func(ctx context.Context) (datastore.DataStore, error) {
			return datastore.NewDataStore(ctx, dsCfg)
		},
		ConnectionString: dsCfg.ConnectionString,
		Out:              os.Stdout,
		Err:              os.Stderr,
	}
	return app.Execute(ctx, os.Args[1:])
}
