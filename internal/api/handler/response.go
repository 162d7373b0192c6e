package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
	"github.com/vfg2006/shop-ops-api/internal/usecases/tracking"
	"github.com/vfg2006/shop-ops-api/pkg/apiErrors"
	"github.com/vfg2006/shop-ops-api/pkg/log"
	"github.com/vfg2006/shop-ops-api/pkg/middleware"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
)

// ownerFromRequest retorna o proprietário efetivo resolvido pelo middleware de personificação
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	ownerID, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
		return 0, false
	}
	return ownerID, true
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := utils.WriteJSON(w, status, body); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar resposta")
	}
}

// writeServiceError converte os erros dos casos de uso no código de API correspondente
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Dados inválidos", validationErr.Fields)
		return
	}

	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		apiErrors.WriteError(w, authErr.Code, authErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, inventory.ErrProductNotFound), errors.Is(err, tracking.ErrProductNotFound):
		apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Produto não encontrado", nil)
	case errors.Is(err, inventory.ErrProductNotAuthorized):
		apiErrors.WriteError(w, apiErrors.ErrProductNotAuthorized, "Produto pertence a outro usuário", nil)
	case errors.Is(err, inventory.ErrSaleNotFound):
		apiErrors.WriteError(w, apiErrors.ErrSaleNotFound, "Venda não encontrada", nil)
	case errors.Is(err, tracking.ErrGoalNotFound):
		apiErrors.WriteError(w, apiErrors.ErrGoalNotFound, "Meta não encontrada", nil)
	case errors.Is(err, tracking.ErrGoalNotAuthorized):
		apiErrors.WriteError(w, apiErrors.ErrGoalNotAuthorized, "Meta pertence a outro usuário", nil)
	case errors.Is(err, authenticating.ErrInvalidCredentials):
		apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "Credenciais inválidas", nil)
	case errors.Is(err, authenticating.ErrUserDisabled):
		apiErrors.WriteError(w, apiErrors.ErrUserDisabled, "Usuário desativado", nil)
	case errors.Is(err, authenticating.ErrUserNotFound):
		apiErrors.WriteError(w, apiErrors.ErrUserNotFound, "Usuário não encontrado", nil)
	case errors.Is(err, authenticating.ErrUserAlreadyExists):
		apiErrors.WriteError(w, apiErrors.ErrUserAlreadyExists, "Usuário já existe", nil)
	default:
		log.ForContext(r.Context()).WithError(err).Error(message)
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, message, nil)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := utils.DecodeJSON(r.Body, dest); err != nil {
		log.ForContext(r.Context()).WithError(err).Debug("Corpo da requisição inválido")
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
		return false
	}
	return true
}
