package server

import (
	"net/http"

	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/STTM-NSU/investboard/internal/model"
)

type registerResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type loginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !a.decode(w, r, &in) {
		return
	}

	user, err := a.users.Register(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, registerResponse{Message: "User erfolgreich registriert", User: user})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !a.decode(w, r, &in) {
		return
	}

	res, err := a.users.Login(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, loginResponse{Message: "Login erfolgreich", Token: res.Token, User: res.User})
}
