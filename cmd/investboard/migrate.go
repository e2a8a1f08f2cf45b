package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/STTM-NSU/investboard/internal/postgres"
	"github.com/google/subcommands"
)

type migrateCmd struct {
	cfgPath string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create the InvestBoard tables in postgres" }
func (*migrateCmd) Usage() string {
	return `investboard migrate [-config <path>]

  Applies the embedded schema. Existing tables are left untouched.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfgPath, "config", _cfgFilePath, "Path to the YAML config file. A missing file means defaults.")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, log, loggerSync, err := setup(c.cfgPath, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer loggerSync()

	db, err := postgres.NewDB(ctx, &cfg.Postgres)
	if err != nil {
		log.Errorf("%s: can't connect to postgres", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Errorf("%s: can't migrate", err)
		return subcommands.ExitFailure
	}
	log.Infof("schema applied to %s", cfg.Postgres.DBName)
	return subcommands.ExitSuccess
}
