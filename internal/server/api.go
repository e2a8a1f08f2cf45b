package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/broker"
	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/portfolio"
	"github.com/STTM-NSU/investboard/internal/position"
)

const apiPrefix = "/api/v1"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Users      *auth.Service
	Brokers    *broker.Service
	Portfolios *portfolio.Service
	Positions  *position.Service
	Store      Pinger
	Logger     logger.Logger

	// AllowedOrigin is sent as Access-Control-Allow-Origin; empty means "*".
	AllowedOrigin string
}

// API is the REST surface of InvestBoard.
type API struct {
	users         *auth.Service
	brokers       *broker.Service
	portfolios    *portfolio.Service
	positions     *position.Service
	store         Pinger
	logger        logger.Logger
	allowedOrigin string
}

func NewAPI(d Deps) *API {
	origin := d.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return &API{
		users:         d.Users,
		brokers:       d.Brokers,
		portfolios:    d.Portfolios,
		positions:     d.Positions,
		store:         d.Store,
		logger:        d.Logger,
		allowedOrigin: origin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, h http.Handler) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+apiPrefix+path, h)
	}

	route("GET /healthz", http.HandlerFunc(a.health))

	route("POST /users/register", http.HandlerFunc(a.register))
	route("POST /users/login", http.HandlerFunc(a.login))

	route("GET /brokers", a.authed(a.listBrokers))
	route("POST /brokers", a.authed(a.createBroker))
	route("GET /brokers/{id}", a.authed(a.getBroker))
	route("PUT /brokers/{id}", a.authed(a.updateBroker))
	route("DELETE /brokers/{id}", a.authed(a.deleteBroker))

	route("GET /portfolios", a.authed(a.listPortfolios))
	route("POST /portfolios", a.authed(a.createPortfolio))
	route("GET /portfolios/{id}", a.authed(a.getPortfolio))
	route("PUT /portfolios/{id}", a.authed(a.updatePortfolio))
	route("DELETE /portfolios/{id}", a.authed(a.deletePortfolio))

	route("GET /positions", a.authed(a.listPositions))
	route("POST /positions", a.authed(a.createPosition))
	route("GET /positions/{id}", a.authed(a.getPosition))
	route("PUT /positions/{id}", a.authed(a.updatePosition))
	route("DELETE /positions/{id}", a.authed(a.deletePosition))

	return a.recovery(correlationID(a.logging(a.cors(mux))))
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		a.logger.Errorf("%s: store ping failed", err)
		a.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Datenbank nicht erreichbar."})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
