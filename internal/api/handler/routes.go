package handler

import (
	"net/http"

	"github.com/vfg2006/shop-ops-api/internal/api/handler/router"
	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
	"github.com/vfg2006/shop-ops-api/internal/usecases/insighting"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
	"github.com/vfg2006/shop-ops-api/internal/usecases/ranking"
	"github.com/vfg2006/shop-ops-api/internal/usecases/tracking"
	"github.com/vfg2006/shop-ops-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/register",
			Method:  http.MethodPost,
			Handler: Register(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []router.Middleware{middleware.SuperUserOnly()},
		},
	}
}

func Dashboard(service insighting.Insighter, rankingService ranking.RankingService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/dashboard",
			Method:      http.MethodGet,
			Handler:     GetDashboard(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/dashboard/stats/:timeframe",
			Method:      http.MethodGet,
			Handler:     GetDashboardStats(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/dashboard/ranking",
			Method:      http.MethodGet,
			Handler:     GetProductRanking(rankingService),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
	}
}

func Products(service inventory.Inventory) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/products",
			Method:      http.MethodGet,
			Handler:     ListProducts(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products",
			Method:      http.MethodPost,
			Handler:     CreateProduct(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodGet,
			Handler:     GetProduct(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodPut,
			Handler:     UpdateProduct(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteProduct(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id/sales",
			Method:      http.MethodGet,
			Handler:     ListSales(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id/sales",
			Method:      http.MethodPost,
			Handler:     AddSale(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id/sales/:saleId",
			Method:      http.MethodPut,
			Handler:     UpdateSale(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id/sales/:saleId",
			Method:      http.MethodDelete,
			Handler:     DeleteSale(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
	}
}

// Goals registra as rotas de metas. O httprouter mantém uma árvore por método,
// então /v1/goals/store (GET) convive com /v1/goals/:id (PUT/DELETE).
func Goals(service tracking.GoalTracker) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/goals",
			Method:      http.MethodGet,
			Handler:     ListGoals(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals",
			Method:      http.MethodPost,
			Handler:     CreateGoal(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/store",
			Method:      http.MethodGet,
			Handler:     GetStoreGoals(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/status",
			Method:      http.MethodGet,
			Handler:     GetGoalsStatus(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/product/:productId",
			Method:      http.MethodGet,
			Handler:     GetProductGoals(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/product/:productId/refresh",
			Method:      http.MethodGet,
			Handler:     RefreshProductGoals(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/sync",
			Method:      http.MethodPost,
			Handler:     SyncGoals(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/:id",
			Method:      http.MethodPut,
			Handler:     UpdateGoal(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteGoal(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
		{
			Path:        "/v1/goals/:id/progress",
			Method:      http.MethodPut,
			Handler:     UpdateGoalProgress(service),
			Middlewares: []router.Middleware{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []router.Middleware{middleware.SuperUserOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []router.Middleware{middleware.SuperUserOnly()},
		},
	}
}
