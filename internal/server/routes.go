package server

import (
	"github.com/gorilla/mux"
	"net/http"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw, s.maxBytesMw)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)
	api.HandleFunc("/user/external-login", s.userExternalLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/info", s.userInfo()).Methods(http.MethodGet)
	userAPI.HandleFunc("/telegram", s.userTelegramSave()).Methods(http.MethodPost)
	userAPI.HandleFunc("/telegram/test", s.userTelegramTest()).Methods(http.MethodPost)
	userAPI.PathPrefix("").Handler(http.NotFoundHandler())

	trackAPI := api.PathPrefix("/track").Subrouter()
	trackAPI.Use(s.authMw)
	trackAPI.HandleFunc("/add", s.trackAdd()).Methods(http.MethodPost)
	trackAPI.HandleFunc("/get", s.trackList()).Methods(http.MethodGet)
	trackAPI.HandleFunc("/history/{trackItemID}", s.trackHistory()).Methods(http.MethodGet)
	trackAPI.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
