package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
)

func ListSales(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		sales, err := service.ListSales(r.Context(), ownerID, productID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar vendas")
			return
		}

		respond(w, r, http.StatusOK, sales)
	}
}

// AddSale registra uma venda e retorna o produto com os totais recalculados
func AddSale(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.SaleRequest
		if !decodeBody(w, r, &req) {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		product, err := service.AddSale(r.Context(), ownerID, productID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao registrar venda")
			return
		}

		respond(w, r, http.StatusCreated, product)
	}
}

// UpdateSale aceita o ID interno da venda ou o transaction_id
func UpdateSale(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.SaleRequest
		if !decodeBody(w, r, &req) {
			return
		}

		params := httprouter.ParamsFromContext(r.Context())

		product, err := service.UpdateSale(r.Context(), ownerID, params.ByName("id"), params.ByName("saleId"), &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao atualizar venda")
			return
		}

		respond(w, r, http.StatusOK, product)
	}
}

func DeleteSale(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		params := httprouter.ParamsFromContext(r.Context())

		product, err := service.DeleteSale(r.Context(), ownerID, params.ByName("id"), params.ByName("saleId"))
		if err != nil {
			writeServiceError(w, r, err, "Erro ao remover venda")
			return
		}

		respond(w, r, http.StatusOK, product)
	}
}
