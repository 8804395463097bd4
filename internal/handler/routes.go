package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apimock/apimock-go/internal/middleware"
	"github.com/apimock/apimock-go/internal/token"
)

// Routes assembles the full route table. Public endpoints bypass the
// authentication gate; everything else runs behind it.
func Routes(authHandler *AuthHandler, userHandler *UserHandler, codec *token.Codec, sessions middleware.SessionRegistry) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/auth/general", authHandler.HandleGeneral)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/user/register", userHandler.HandleRegister)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(codec, sessions))

		r.Post("/auth/change-password", authHandler.HandleChangePassword)
		r.Get("/auth/session", authHandler.HandleSessions)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/auth/currentUser", userHandler.HandleCurrentUser)
		r.Put("/auth/updateUser", userHandler.HandleUpdateUser)
		r.Delete("/auth/deleteUser", userHandler.HandleDeleteUser)
		r.Get("/user/allUserList", userHandler.HandleAllUserList)
	})

	return r
}
