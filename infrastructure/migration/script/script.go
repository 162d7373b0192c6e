package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/shop-ops-api/infrastructure/database/postgres"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/config"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		role_id INTEGER NOT NULL DEFAULT 2,
		business_name VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(32) PRIMARY KEY,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		variant VARCHAR(255),
		supplier VARCHAR(255),
		unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		fees NUMERIC(12,2) NOT NULL DEFAULT 0,
		sourcing_status VARCHAR(32) NOT NULL DEFAULT 'in progress',
		units_sold INTEGER NOT NULL DEFAULT 0,
		total_sales NUMERIC(14,2) NOT NULL DEFAULT 0,
		profit_margin DOUBLE PRECISION NOT NULL DEFAULT 0,
		sales_history JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS products_owner_id_idx ON products (owner_id)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id VARCHAR(32) PRIMARY KEY,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id VARCHAR(32) REFERENCES products(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(32) NOT NULL CHECK (type IN ('revenue', 'sales', 'profit', 'profit_margin')),
		target_amount DOUBLE PRECISION NOT NULL CHECK (target_amount > 0),
		current_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		is_product_specific BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date >= start_date)
	)`,
	`CREATE INDEX IF NOT EXISTS goals_owner_id_idx ON goals (owner_id)`,
	`CREATE INDEX IF NOT EXISTS goals_product_id_idx ON goals (product_id)`,
}

type demoProduct struct {
	name      string
	supplier  string
	unitCost  float64
	basePrice float64
	fees      float64
	status    domain.SourcingStatus
	daily     int
}

var demoProducts = []demoProduct{
	{name: "Camiseta Básica", supplier: "Malharia Sul", unitCost: 18, basePrice: 49.9, fees: 4.5, status: domain.SourcingStatusComplete, daily: 3},
	{name: "Caneca Personalizada", supplier: "Cerâmica Vale", unitCost: 9.5, basePrice: 34.9, fees: 3, status: domain.SourcingStatusComplete, daily: 2},
	{name: "Ecobag Estampada", supplier: "Têxtil Norte", unitCost: 7, basePrice: 24.9, fees: 2.2, status: domain.SourcingStatusNegotiation, daily: 1},
}

func main() {
	seed := flag.Bool("seed", false, "insere um usuário e produtos de demonstração")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.Info("Iniciando script de migração...")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar configuração")
	}

	ctx := context.Background()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer conn.Close()

	if err := createSchema(ctx, conn); err != nil {
		logrus.WithError(err).Fatal("Erro ao criar o schema")
	}

	if !*seed {
		return
	}

	if err := seedDemo(ctx, conn, time.Now()); err != nil {
		logrus.WithError(err).Fatal("Erro ao inserir dados de demonstração")
	}
}

func createSchema(ctx context.Context, conn *postgres.Connection) error {
	startTime := time.Now()

	err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, statement := range schema {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("elapsed", time.Since(startTime).String()).Info("Schema criado com sucesso")
	return nil
}

func seedDemo(ctx context.Context, conn *postgres.Connection, now time.Time) error {
	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	goalRepo := repository.NewGoalRepository(conn)

	existing, err := userRepo.GetUserByEmail(ctx, "demo@shopops.dev")
	if err != nil {
		return err
	}
	if existing != nil {
		logrus.Info("Usuário de demonstração já existe, nada a fazer")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	businessName := "Loja Demo"
	user, err := userRepo.CreateUser(ctx, &domain.User{
		Name:         "Demo",
		Email:        "demo@shopops.dev",
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       domain.RoleUser,
		BusinessName: &businessName,
	})
	if err != nil {
		return err
	}

	for _, demo := range demoProducts {
		id, err := utils.GenerateID()
		if err != nil {
			return err
		}

		supplier := demo.supplier
		product := &domain.Product{
			ID:             id,
			OwnerID:        user.ID,
			Name:           demo.name,
			Supplier:       &supplier,
			UnitCost:       demo.unitCost,
			BasePrice:      demo.basePrice,
			Fees:           demo.fees,
			SourcingStatus: demo.status,
			SalesHistory:   []domain.SaleRecord{},
		}
		addDemoSales(product, demo, now)

		if _, err := productRepo.CreateProduct(ctx, product); err != nil {
			return err
		}
	}

	goals, err := demoGoals(user.ID, now)
	if err != nil {
		return err
	}

	if err := goalRepo.CreateGoals(ctx, goals); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"products": len(demoProducts),
		"goals":    len(goals),
	}).Info("Dados de demonstração inseridos")

	return nil
}

// addDemoSales registra uma venda por dia nos últimos 60 dias, com volume crescente
func addDemoSales(product *domain.Product, demo demoProduct, now time.Time) {
	for day := 60; day > 0; day-- {
		units := demo.daily + (60-day)/20
		date := now.AddDate(0, 0, -day)

		product.AddSale(domain.SaleRecord{
			Date:      date,
			UnitsSold: units,
			Revenue:   utils.RoundWithTwoDecimalPlace(demo.basePrice * float64(units)),
			Notes:     "Venda de demonstração",
		}, date)
	}
}

func demoGoals(ownerID int, now time.Time) ([]*domain.Goal, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)

	targets := []struct {
		name   string
		kind   domain.GoalType
		amount float64
	}{
		{"Faturamento do mês", domain.GoalTypeRevenue, 8000},
		{"Vendas do mês", domain.GoalTypeSales, 200},
		{"Lucro do mês", domain.GoalTypeProfit, 3500},
		{"Margem do mês", domain.GoalTypeProfitMargin, 45},
	}

	goals := make([]*domain.Goal, 0, len(targets))
	for _, target := range targets {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}

		goals = append(goals, &domain.Goal{
			ID:           id,
			OwnerID:      ownerID,
			Name:         target.name,
			Type:         target.kind,
			TargetAmount: target.amount,
			StartDate:    start,
			EndDate:      end,
		})
	}

	return goals, nil
}
