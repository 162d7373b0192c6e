package handler

import (
	"net/http"

	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
)

// ListUsers lista os usuários cadastrados, usado pelo superusuário para escolher quem personificar
func ListUsers(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := service.ListUser(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar usuários")
			return
		}

		respond(w, r, http.StatusOK, users)
	}
}
