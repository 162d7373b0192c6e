package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/shop-ops-api/infrastructure/database/postgres"
	"github.com/vfg2006/shop-ops-api/internal/domain"
)

const (
	goalsTable = "goals"
)

var goalColumns = []string{
	"id",
	"owner_id",
	"product_id",
	"name",
	"type",
	"target_amount",
	"current_amount",
	"start_date",
	"end_date",
	"is_product_specific",
	"created_at",
	"updated_at",
}

//go:generate mockgen -source=goal.go -destination=mocks/goal.go -package=mocks
type GoalRepository interface {
	ListGoals(ctx context.Context, ownerID int, filters domain.GoalFilters) ([]*domain.Goal, error)
	GetGoalByID(ctx context.Context, id string) (*domain.Goal, error)
	CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error)
	CreateGoals(ctx context.Context, goals []*domain.Goal) error
	UpdateGoal(ctx context.Context, goal *domain.Goal) error
	UpdateCurrentAmount(ctx context.Context, id string, currentAmount float64) error
	DeleteGoal(ctx context.Context, id string) error
}

type goalRepository struct {
	conn postgres.Conn
}

func NewGoalRepository(conn postgres.Conn) GoalRepository {
	return &goalRepository{
		conn: conn,
	}
}

func (r *goalRepository) ListGoals(ctx context.Context, ownerID int, filters domain.GoalFilters) ([]*domain.Goal, error) {
	queryBuilder := squirrel.
		Select(goalColumns...).
		From(goalsTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("end_date ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filters.IsProductSpecific != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"is_product_specific": *filters.IsProductSpecific})
	}

	if filters.ProductID != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"product_id": *filters.ProductID})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	goals := make([]*domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear meta: %w", err)
		}
		goals = append(goals, goal)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return goals, nil
}

func (r *goalRepository) GetGoalByID(ctx context.Context, id string) (*domain.Goal, error) {
	query, args, err := squirrel.
		Select(goalColumns...).
		From(goalsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	goal, err := scanGoal(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear meta: %w", err)
	}

	return goal, nil
}

func (r *goalRepository) CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if err := r.insertGoal(ctx, r.conn, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// CreateGoals insere as metas em uma única transação
func (r *goalRepository) CreateGoals(ctx context.Context, goals []*domain.Goal) error {
	if len(goals) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, goal := range goals {
			if err := r.insertGoal(ctx, tx, goal); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *goalRepository) insertGoal(ctx context.Context, q postgres.Queryer, goal *domain.Goal) error {
	query, args, err := squirrel.
		Insert(goalsTable).
		Columns(
			"id", "owner_id", "product_id", "name", "type", "target_amount",
			"current_amount", "start_date", "end_date", "is_product_specific",
		).
		Values(
			goal.ID,
			goal.OwnerID,
			goal.ProductID,
			goal.Name,
			goal.Type,
			goal.TargetAmount,
			goal.CurrentAmount,
			goal.StartDate,
			goal.EndDate,
			goal.IsProductSpecific,
		).
		Suffix("RETURNING created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	err = q.QueryRowContext(ctx, query, args...).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir meta: %w", err)
	}

	return nil
}

func (r *goalRepository) UpdateGoal(ctx context.Context, goal *domain.Goal) error {
	query, args, err := squirrel.
		Update(goalsTable).
		Set("name", goal.Name).
		Set("type", goal.Type).
		Set("target_amount", goal.TargetAmount).
		Set("current_amount", goal.CurrentAmount).
		Set("start_date", goal.StartDate).
		Set("end_date", goal.EndDate).
		Set("product_id", goal.ProductID).
		Set("is_product_specific", goal.IsProductSpecific).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": goal.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de atualização: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&goal.UpdatedAt); err != nil {
		return fmt.Errorf("erro ao atualizar meta %s: %w", goal.ID, err)
	}

	return nil
}

func (r *goalRepository) UpdateCurrentAmount(ctx context.Context, id string, currentAmount float64) error {
	query, args, err := squirrel.
		Update(goalsTable).
		Set("current_amount", currentAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de atualização: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("erro ao atualizar progresso da meta %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("meta %s não encontrada: %w", id, sql.ErrNoRows)
	}

	return nil
}

func (r *goalRepository) DeleteGoal(ctx context.Context, id string) error {
	query, args, err := squirrel.
		Delete(goalsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de remoção: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover meta: %w", err)
	}

	return nil
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	goal := &domain.Goal{}

	err := row.Scan(
		&goal.ID,
		&goal.OwnerID,
		&goal.ProductID,
		&goal.Name,
		&goal.Type,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.StartDate,
		&goal.EndDate,
		&goal.IsProductSpecific,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return goal, nil
}
