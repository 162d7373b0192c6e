package tracking

import "errors"

var (
	ErrGoalNotFound      = errors.New("meta não encontrada")
	ErrGoalNotAuthorized = errors.New("usuário não autorizado a acessar esta meta")
	ErrProductNotFound   = errors.New("produto não encontrado")
)
