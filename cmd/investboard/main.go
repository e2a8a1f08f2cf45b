package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/STTM-NSU/investboard/internal/config"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

const (
	_cfgFilePath = "./configs/investboard.yaml"
)

func main() {
	envErr := godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&migrateCmd{}, "")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx, envErr)
	cancel()
	os.Exit(int(status))
}

// setup loads the config and builds the logger shared by all subcommands.
func setup(cfgPath string, args []interface{}) (config.Config, logger.Logger, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("%w: can't load config %s", err, cfgPath)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}
	zapLogger, loggerSync, err := logger.NewZapLogger(level)
	if err != nil {
		return cfg, nil, nil, err
	}

	if len(args) > 0 && args[0] != nil {
		zapLogger.Warnf("can't detect .env file")
	}
	if cfg.Auth.InsecureSecret {
		zapLogger.Warnf("JWT_SECRET is not set, tokens are signed with an insecure development secret")
	}

	return cfg, zapLogger, loggerSync, nil
}
