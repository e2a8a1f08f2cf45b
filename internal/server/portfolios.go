package server

import (
	"net/http"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/portfolio"
)

func (a *API) listPortfolios(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	kontos, err := a.portfolios.List(r.Context(), caller)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, kontos)
}

func (a *API) getPortfolio(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	k, err := a.portfolios.Get(r.Context(), caller, pathID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, k)
}

func (a *API) createPortfolio(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var in portfolio.CreateInput
	if !a.decode(w, r, &in) {
		return
	}

	k, err := a.portfolios.Create(r.Context(), caller, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, k)
}

func (a *API) updatePortfolio(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var patch model.KontoPatch
	if !a.decode(w, r, &patch) {
		return
	}

	k, err := a.portfolios.Update(r.Context(), caller, pathID(r), patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, k)
}

func (a *API) deletePortfolio(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if err := a.portfolios.Delete(r.Context(), caller, pathID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
