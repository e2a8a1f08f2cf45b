// Package app wires the services of InvestBoard onto a store.
package app

import (
	"time"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/broker"
	"github.com/STTM-NSU/investboard/internal/config"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/ownership"
	"github.com/STTM-NSU/investboard/internal/portfolio"
	"github.com/STTM-NSU/investboard/internal/position"
	"github.com/STTM-NSU/investboard/internal/server"
	"github.com/STTM-NSU/investboard/internal/storage"
	"go.uber.org/ratelimit"
)

// NewAPI builds every service on the single store handle and returns the
// HTTP surface over them.
func NewAPI(cfg config.Config, store storage.Store, log logger.Logger) *server.API {
	var loginLimiter ratelimit.Limiter
	if cfg.Auth.LoginRatePerMinute > 0 {
		loginLimiter = ratelimit.New(cfg.Auth.LoginRatePerMinute, ratelimit.Per(time.Minute))
	}

	resolver := ownership.NewResolver(store)

	return server.NewAPI(server.Deps{
		Users: auth.NewService(
			store,
			auth.NewHasher(cfg.Auth.BcryptCost),
			auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
			loginLimiter,
			log.With("service", "auth"),
		),
		Brokers:       broker.NewService(store, resolver, log.With("service", "broker")),
		Portfolios:    portfolio.NewService(store, resolver, log.With("service", "portfolio")),
		Positions:     position.NewService(store, resolver, log.With("service", "position")),
		Store:         store,
		Logger:        log.With("component", "http"),
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
	})
}
