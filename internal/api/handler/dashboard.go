package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/shop-ops-api/internal/usecases/insighting"
	"github.com/vfg2006/shop-ops-api/internal/usecases/ranking"
)

// GetDashboard retorna o snapshot agregado do período informado em ?timeframe=
func GetDashboard(service insighting.Insighter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		snapshot, err := service.GetDashboard(r.Context(), ownerID, r.URL.Query().Get("timeframe"))
		if err != nil {
			writeServiceError(w, r, err, "Erro ao calcular o dashboard")
			return
		}

		respond(w, r, http.StatusOK, snapshot)
	}
}

func GetDashboardStats(service insighting.Insighter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		timeframe := httprouter.ParamsFromContext(r.Context()).ByName("timeframe")

		stats, err := service.GetStats(r.Context(), ownerID, timeframe)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao calcular as estatísticas")
			return
		}

		respond(w, r, http.StatusOK, stats)
	}
}

// GetProductRanking retorna os produtos ordenados por faturamento no período
func GetProductRanking(service ranking.RankingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productRanking, err := service.GetProductRanking(r.Context(), ownerID, r.URL.Query().Get("timeframe"))
		if err != nil {
			writeServiceError(w, r, err, "Erro ao buscar ranking de produtos")
			return
		}

		respond(w, r, http.StatusOK, productRanking)
	}
}
