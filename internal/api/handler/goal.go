package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/tracking"
	"github.com/vfg2006/shop-ops-api/pkg/apiErrors"
)

// ListGoals lista as metas do proprietário, com filtro opcional ?is_product_specific= e ?product_id=
func ListGoals(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var filters domain.GoalFilters

		query := r.URL.Query()
		if raw := query.Get("is_product_specific"); raw != "" {
			isProductSpecific, err := strconv.ParseBool(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Filtro is_product_specific inválido", nil)
				return
			}
			filters.IsProductSpecific = &isProductSpecific
		}

		if productID := query.Get("product_id"); productID != "" {
			filters.ProductID = &productID
		}

		goals, err := service.ListGoals(r.Context(), ownerID, filters)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar metas")
			return
		}

		respond(w, r, http.StatusOK, goals)
	}
}

func GetStoreGoals(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		goals, err := service.GetStoreGoals(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar metas da loja")
			return
		}

		respond(w, r, http.StatusOK, goals)
	}
}

// GetGoalsStatus retorna todas as metas com progresso e status calculados
func GetGoalsStatus(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		goals, err := service.GetGoalsStatus(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao calcular status das metas")
			return
		}

		respond(w, r, http.StatusOK, goals)
	}
}

// GetProductGoals lista as metas do produto, criando as metas padrão quando não existem
func GetProductGoals(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("productId")

		goals, err := service.GetProductGoals(r.Context(), ownerID, productID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar metas do produto")
			return
		}

		respond(w, r, http.StatusOK, goals)
	}
}

func RefreshProductGoals(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("productId")

		result, err := service.RefreshProductGoals(r.Context(), ownerID, productID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao atualizar metas do produto")
			return
		}

		respond(w, r, http.StatusOK, result)
	}
}

// SyncGoals sincroniza as metas da loja com o snapshot do dashboard enviado no corpo
func SyncGoals(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var snapshot *domain.DashboardSnapshot
		if !decodeBody(w, r, &snapshot) {
			return
		}

		result, err := service.SyncGoals(r.Context(), ownerID, snapshot)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao sincronizar metas")
			return
		}

		respond(w, r, http.StatusOK, result)
	}
}

func CreateGoal(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.CreateGoalRequest
		if !decodeBody(w, r, &req) {
			return
		}

		goal, err := service.CreateGoal(r.Context(), ownerID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao criar meta")
			return
		}

		respond(w, r, http.StatusCreated, goal)
	}
}

func UpdateGoal(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.UpdateGoalRequest
		if !decodeBody(w, r, &req) {
			return
		}

		goalID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		goal, err := service.UpdateGoal(r.Context(), ownerID, goalID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao atualizar meta")
			return
		}

		respond(w, r, http.StatusOK, goal)
	}
}

// UpdateGoalProgress define manualmente o valor atual da meta
func UpdateGoalProgress(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.UpdateGoalProgressRequest
		if !decodeBody(w, r, &req) {
			return
		}

		goalID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		goal, err := service.UpdateProgress(r.Context(), ownerID, goalID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao atualizar progresso da meta")
			return
		}

		respond(w, r, http.StatusOK, goal)
	}
}

func DeleteGoal(service tracking.GoalTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		goalID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.DeleteGoal(r.Context(), ownerID, goalID); err != nil {
			writeServiceError(w, r, err, "Erro ao remover meta")
			return
		}

		respond(w, r, http.StatusOK, map[string]string{"message": "Meta removida"})
	}
}
