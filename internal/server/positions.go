package server

import (
	"net/http"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/model"
	"github.com/STTM-NSU/investboard/internal/position"
)

func (a *API) listPositions(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	positions, err := a.positions.List(r.Context(), caller)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, positions)
}

func (a *API) getPosition(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	p, err := a.positions.Get(r.Context(), caller, pathID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *API) createPosition(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var in position.CreateInput
	if !a.decode(w, r, &in) {
		return
	}

	p, err := a.positions.Create(r.Context(), caller, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, p)
}

func (a *API) updatePosition(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var patch model.PositionPatch
	if !a.decode(w, r, &patch) {
		return
	}

	p, err := a.positions.Update(r.Context(), caller, pathID(r), patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *API) deletePosition(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	if err := a.positions.Delete(r.Context(), caller, pathID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
