package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
)

func ListProducts(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		products, err := service.ListProducts(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao listar produtos")
			return
		}

		respond(w, r, http.StatusOK, products)
	}
}

func GetProduct(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		product, err := service.GetProduct(r.Context(), ownerID, productID)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao buscar produto")
			return
		}

		respond(w, r, http.StatusOK, product)
	}
}

func CreateProduct(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.CreateProductRequest
		if !decodeBody(w, r, &req) {
			return
		}

		product, err := service.CreateProduct(r.Context(), ownerID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao criar produto")
			return
		}

		respond(w, r, http.StatusCreated, product)
	}
}

func UpdateProduct(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.UpdateProductRequest
		if !decodeBody(w, r, &req) {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		product, err := service.UpdateProduct(r.Context(), ownerID, productID, &req)
		if err != nil {
			writeServiceError(w, r, err, "Erro ao atualizar produto")
			return
		}

		respond(w, r, http.StatusOK, product)
	}
}

func DeleteProduct(service inventory.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := ownerFromRequest(w, r)
		if !ok {
			return
		}

		productID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.DeleteProduct(r.Context(), ownerID, productID); err != nil {
			writeServiceError(w, r, err, "Erro ao remover produto")
			return
		}

		respond(w, r, http.StatusOK, map[string]string{"message": "Produto removido"})
	}
}
