package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/shop-ops-api/infrastructure/database/postgres"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
)

const (
	productsTable = "products"
)

var productColumns = []string{
	"id",
	"owner_id",
	"name",
	"variant",
	"supplier",
	"unit_cost",
	"base_price",
	"fees",
	"sourcing_status",
	"units_sold",
	"total_sales",
	"profit_margin",
	"sales_history",
	"created_at",
	"updated_at",
}

//go:generate mockgen -source=product.go -destination=mocks/product.go -package=mocks
type ProductRepository interface {
	ListProducts(ctx context.Context, ownerID int) ([]*domain.Product, error)
	ListAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	UpdateProductTotals(ctx context.Context, products []*domain.Product) (int, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productRepository struct {
	conn postgres.Conn
}

func NewProductRepository(conn postgres.Conn) ProductRepository {
	return &productRepository{
		conn: conn,
	}
}

// saleRecordRow é o formato armazenado na coluna sales_history.
// A data é lida como texto para que um registro inválido não impeça a leitura dos demais.
type saleRecordRow struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	UnitsSold     int     `json:"units_sold"`
	Revenue       float64 `json:"revenue"`
	Notes         string  `json:"notes,omitempty"`
	TransactionID string  `json:"transaction_id"`
}

func (r *productRepository) ListProducts(ctx context.Context, ownerID int) ([]*domain.Product, error) {
	query, args, err := squirrel.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.queryProducts(ctx, query, args...)
}

func (r *productRepository) ListAllProducts(ctx context.Context) ([]*domain.Product, error) {
	query, args, err := squirrel.
		Select(productColumns...).
		From(productsTable).
		OrderBy("owner_id ASC", "name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.queryProducts(ctx, query, args...)
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query, args, err := squirrel.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	product, err := r.scanProduct(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear produto: %w", err)
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	salesHistoryJSON, err := marshalSalesHistory(product.SalesHistory)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.
		Insert(productsTable).
		Columns(
			"id", "owner_id", "name", "variant", "supplier", "unit_cost", "base_price", "fees",
			"sourcing_status", "units_sold", "total_sales", "profit_margin", "sales_history",
		).
		Values(
			product.ID,
			product.OwnerID,
			product.Name,
			product.Variant,
			product.Supplier,
			product.UnitCost,
			product.BasePrice,
			product.Fees,
			product.SourcingStatus,
			product.UnitsSold,
			product.TotalSales,
			product.ProfitMargin,
			salesHistoryJSON,
		).
		Suffix("RETURNING created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("erro ao inserir produto: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return r.updateProduct(ctx, r.conn, product)
}

// UpdateProductTotals grava apenas os campos derivados dos produtos em uma única transação.
// Produtos alterados depois de carregados (updated_at diferente) são ignorados.
// Retorna quantos produtos foram efetivamente atualizados.
func (r *productRepository) UpdateProductTotals(ctx context.Context, products []*domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	updated := 0
	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		updated = 0
		for _, product := range products {
			query, args, err := productTotalsUpdate(product)
			if err != nil {
				return fmt.Errorf("erro ao construir query de atualização de totais: %w", err)
			}

			result, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("erro ao atualizar totais do produto %s: %w", product.ID, err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("erro ao verificar atualização do produto %s: %w", product.ID, err)
			}
			if affected == 0 {
				logrus.WithField("product_id", product.ID).Debug("Produto alterado durante a reconciliação, totais não gravados")
				continue
			}

			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

func productTotalsUpdate(product *domain.Product) (string, []any, error) {
	return squirrel.
		Update(productsTable).
		Set("units_sold", product.UnitsSold).
		Set("total_sales", product.TotalSales).
		Set("profit_margin", product.ProfitMargin).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": product.ID}).
		Where(squirrel.Eq{"updated_at": product.UpdatedAt}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *productRepository) updateProduct(ctx context.Context, q postgres.Queryer, product *domain.Product) error {
	salesHistoryJSON, err := marshalSalesHistory(product.SalesHistory)
	if err != nil {
		return err
	}

	query, args, err := squirrel.
		Update(productsTable).
		Set("name", product.Name).
		Set("variant", product.Variant).
		Set("supplier", product.Supplier).
		Set("unit_cost", product.UnitCost).
		Set("base_price", product.BasePrice).
		Set("fees", product.Fees).
		Set("sourcing_status", product.SourcingStatus).
		Set("units_sold", product.UnitsSold).
		Set("total_sales", product.TotalSales).
		Set("profit_margin", product.ProfitMargin).
		Set("sales_history", salesHistoryJSON).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": product.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de atualização: %w", err)
	}

	err = q.QueryRowContext(ctx, query, args...).Scan(&product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao atualizar produto %s: %w", product.ID, err)
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	query, args, err := squirrel.
		Delete(productsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de remoção: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover produto: %w", err)
	}

	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear produto: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var salesHistoryJSON []byte

	err := row.Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Variant,
		&product.Supplier,
		&product.UnitCost,
		&product.BasePrice,
		&product.Fees,
		&product.SourcingStatus,
		&product.UnitsSold,
		&product.TotalSales,
		&product.ProfitMargin,
		&salesHistoryJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.SalesHistory, err = unmarshalSalesHistory(product.ID, salesHistoryJSON)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func marshalSalesHistory(sales []domain.SaleRecord) ([]byte, error) {
	rows := make([]saleRecordRow, 0, len(sales))
	for _, sale := range sales {
		row := saleRecordRow{
			ID:            sale.ID,
			UnitsSold:     sale.UnitsSold,
			Revenue:       sale.Revenue,
			Notes:         sale.Notes,
			TransactionID: sale.TransactionID,
		}
		switch {
		case !sale.Date.IsZero():
			row.Date = sale.Date.Format(time.RFC3339)
		case sale.RawDate != "":
			row.Date = sale.RawDate
		}
		rows = append(rows, row)
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar histórico de vendas: %w", err)
	}

	return data, nil
}

func unmarshalSalesHistory(productID string, data []byte) ([]domain.SaleRecord, error) {
	if len(data) == 0 {
		return []domain.SaleRecord{}, nil
	}

	var rows []saleRecordRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("erro ao desserializar histórico de vendas: %w", err)
	}

	sales := make([]domain.SaleRecord, 0, len(rows))
	for _, row := range rows {
		sale := domain.SaleRecord{
			ID:            row.ID,
			UnitsSold:     row.UnitsSold,
			Revenue:       row.Revenue,
			Notes:         row.Notes,
			TransactionID: row.TransactionID,
		}

		date, err := utils.ParseDate(row.Date)
		if err != nil {
			// A venda é mantida com data zerada e ignorada nas agregações
			sale.RawDate = row.Date
			logrus.WithFields(logrus.Fields{
				"product_id": productID,
				"sale_id":    row.ID,
				"date":       row.Date,
			}).Warn("Data inválida no histórico de vendas")
		} else {
			sale.Date = *date
		}

		sales = append(sales, sale)
	}

	return sales, nil
}
