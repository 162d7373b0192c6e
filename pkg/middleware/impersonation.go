package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/vfg2006/shop-ops-api/pkg/apiErrors"
	"github.com/vfg2006/shop-ops-api/pkg/log"
)

const (
	ContextKeyOwnerID contextKey = "owner_id"

	ImpersonateHeader = "X-Impersonate-User-Id"
)

// Impersonation resolve o proprietário efetivo da requisição.
// O cabeçalho de personificação só é aceito para superusuários e é ignorado para os demais.
func Impersonation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ownerID := claims.UserID

			header := strings.TrimSpace(r.Header.Get(ImpersonateHeader))
			if header != "" && claims.IsSuperUser() {
				impersonatedID, err := strconv.Atoi(header)
				if err != nil || impersonatedID <= 0 {
					apiErrors.WriteError(w, apiErrors.ErrInvalidImpersonation, "Identificador de usuário inválido", nil)
					return
				}

				log.ForContext(r.Context()).WithFields(log.Fields{
					"user_id":          claims.UserID,
					"user_impersonate": impersonatedID,
				}).Info("Requisição executada com personificação")

				ownerID = impersonatedID
			}

			ctx := context.WithValue(r.Context(), ContextKeyOwnerID, ownerID)
			ctx = log.WithOwner(ctx, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerIDFromContext retorna o proprietário efetivo resolvido pela personificação
func OwnerIDFromContext(ctx context.Context) (int, bool) {
	ownerID, ok := ctx.Value(ContextKeyOwnerID).(int)
	return ownerID, ok
}
