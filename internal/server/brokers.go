package server

import (
	"net/http"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/broker"
	"github.com/STTM-NSU/investboard/internal/model"
)

func (a *API) listBrokers(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	brokers, err := a.brokers.List(r.Context(), caller)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, brokers)
}

func (a *API) getBroker(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	b, err := a.brokers.Get(r.Context(), caller, pathID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, b)
}

func (a *API) createBroker(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var in broker.CreateInput
	if !a.decode(w, r, &in) {
		return
	}

	b, err := a.brokers.Create(r.Context(), caller, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, b)
}

func (a *API) updateBroker(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var patch model.BrokerPatch
	if !a.decode(w, r, &patch) {
		return
	}

	b, err := a.brokers.Update(r.Context(), caller, pathID(r), patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, b)
}

func (a *API) deleteBroker(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if err := a.brokers.Delete(r.Context(), caller, pathID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
