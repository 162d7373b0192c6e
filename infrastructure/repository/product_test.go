package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/shop-ops-api/internal/domain"
)

func TestProductTotalsUpdate(t *testing.T) {
	loadedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	product := &domain.Product{
		ID:           "p1",
		Name:         "Camiseta",
		UnitCost:     10,
		UnitsSold:    5,
		TotalSales:   125,
		ProfitMargin: 52,
		SalesHistory: []domain.SaleRecord{{ID: "s1", UnitsSold: 5, Revenue: 125}},
		UpdatedAt:    loadedAt,
	}

	query, args, err := productTotalsUpdate(product)
	require.NoError(t, err)

	for _, column := range []string{"units_sold", "total_sales", "profit_margin", "updated_at = NOW()"} {
		assert.Contains(t, query, column)
	}
	for _, column := range []string{"sales_history", "name", "unit_cost", "base_price", "fees", "sourcing_status", "variant", "supplier"} {
		assert.NotContains(t, query, column)
	}

	assert.Contains(t, query, "WHERE id = $4 AND updated_at = $5")
	assert.Equal(t, []any{5, 125.0, 52.0, "p1", loadedAt}, args)
}

func TestSalesHistoryRoundTrip(t *testing.T) {
	stored := []byte(`[
		{"id":"s1","date":"2024-03-01T10:00:00Z","units_sold":2,"revenue":50,"transaction_id":"t1"},
		{"id":"s2","date":"ontem","units_sold":1,"revenue":25,"transaction_id":"t2"},
		{"id":"s3","date":"","units_sold":1,"revenue":25,"transaction_id":"t3"}
	]`)

	sales, err := unmarshalSalesHistory("p1", stored)
	require.NoError(t, err)
	require.Len(t, sales, 3)

	assert.False(t, sales[0].Date.IsZero())
	assert.True(t, sales[1].Date.IsZero())
	assert.Equal(t, "ontem", sales[1].RawDate)
	assert.True(t, sales[2].Date.IsZero())
	assert.Empty(t, sales[2].RawDate)

	data, err := marshalSalesHistory(sales)
	require.NoError(t, err)

	var rows []saleRecordRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "2024-03-01T10:00:00Z", rows[0].Date)
	assert.Equal(t, "ontem", rows[1].Date)
	assert.Equal(t, "", rows[2].Date)
}
