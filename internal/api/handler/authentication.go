package handler

import (
	"net/http"

	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
	"github.com/vfg2006/shop-ops-api/pkg/apiErrors"
	"github.com/vfg2006/shop-ops-api/pkg/log"
	"github.com/vfg2006/shop-ops-api/pkg/middleware"
)

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := domain.Validate(&req); err != nil {
			writeServiceError(w, r, err, "Dados de login inválidos")
			return
		}

		response, err := service.LoginUser(r.Context(), req.Email, req.Password)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Debug("Falha no login")
			writeServiceError(w, r, err, "Erro interno ao realizar login")
			return
		}

		respond(w, r, http.StatusOK, response)
	}
}

func Register(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegisterRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := service.Register(r.Context(), &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao cadastrar usuário")
			return
		}

		respond(w, r, http.StatusCreated, user)
	}
}

// GetMe retorna o perfil do usuário autenticado (nunca o personificado)
func GetMe(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		user, err := service.GetUserProfile(r.Context(), userClaims.UserID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao obter dados do usuário")
			return
		}

		respond(w, r, http.StatusOK, user)
	}
}
