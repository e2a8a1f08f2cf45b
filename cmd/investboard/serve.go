package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/STTM-NSU/investboard/internal/app"
	"github.com/STTM-NSU/investboard/internal/postgres"
	"github.com/STTM-NSU/investboard/internal/server"
	"github.com/STTM-NSU/investboard/internal/storage"
	"github.com/STTM-NSU/investboard/internal/storage/memory"
	"github.com/google/subcommands"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

type serveCmd struct {
	cfgPath string
	store   string
	migrate bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the InvestBoard REST API" }
func (*serveCmd) Usage() string {
	return `investboard serve [-config <path>] [-store postgres|memory] [-migrate]

  Serves the REST API under /api/v1 until SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfgPath, "config", _cfgFilePath, "Path to the YAML config file. A missing file means defaults.")
	f.StringVar(&c.store, "store", storePostgres, "Storage backend (postgres, memory).")
	f.BoolVar(&c.migrate, "migrate", false, "Apply the schema before serving (postgres only).")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, log, loggerSync, err := setup(c.cfgPath, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer loggerSync()

	var store storage.Store
	switch c.store {
	case storeMemory:
		log.Warnf("using in-memory store, data is lost on exit")
		store = memory.New()
	case storePostgres:
		db, err := postgres.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			log.Errorf("%s: can't connect to postgres", err)
			return subcommands.ExitFailure
		}
		defer db.Close()

		if c.migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.Errorf("%s: can't migrate", err)
				return subcommands.ExitFailure
			}
		}
		store = postgres.NewStore(db)
	default:
		log.Errorf("unknown store %q", c.store)
		return subcommands.ExitUsageError
	}

	api := app.NewAPI(cfg, store, log)
	srv := server.NewHTTPServer(ctx, cfg.HTTP, api.Handler())

	log.Infof("listening on %s (env %s, store %s)", srv.Addr(), cfg.Env, c.store)
	if err := srv.Run(ctx); err != nil {
		log.Errorf("%s: server stopped", err)
		return subcommands.ExitFailure
	}
	log.Infof("server stopped")
	return subcommands.ExitSuccess
}
