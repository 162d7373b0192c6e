package inventory

import "errors"

var (
	ErrProductNotFound      = errors.New("produto não encontrado")
	ErrProductNotAuthorized = errors.New("usuário não autorizado a acessar este produto")
	ErrSaleNotFound         = errors.New("venda não encontrada")
)
