package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Storage: deps.Storage}
	films := FilmHandler{Films: deps.Films}
	users := UserHandler{Users: deps.Users}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("GET /films", films.List)
	mux.HandleFunc("POST /films", films.Create)
	mux.HandleFunc("PUT /films", films.Update)
	mux.HandleFunc("GET /films/popular", films.Popular)
	mux.HandleFunc("GET /films/{id}", films.Get)
	mux.HandleFunc("PUT /films/{id}/like/{userId}", films.Like)
	mux.HandleFunc("DELETE /films/{id}/like/{userId}", films.Unlike)

	mux.HandleFunc("GET /users", users.List)
	mux.HandleFunc("POST /users", users.Create)
	mux.HandleFunc("PUT /users", users.Update)
	mux.HandleFunc("GET /users/{id}", users.Get)
	mux.HandleFunc("GET /users/{id}/friends", users.Friends)
	mux.HandleFunc("PUT /users/{id}/friends/{friendId}", users.AddFriend)
	mux.HandleFunc("DELETE /users/{id}/friends/{friendId}", users.RemoveFriend)
	mux.HandleFunc("GET /users/{id}/friends/common/{otherId}", users.CommonFriends)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Films FilmService
	Users UserService
	// Storage is pinged by the health check when set.
	Storage Pinger
}
