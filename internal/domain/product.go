package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SourcingStatus string

const (
	SourcingStatusInProgress  SourcingStatus = "in progress"
	SourcingStatusNegotiation SourcingStatus = "negotiation"
	SourcingStatusComplete    SourcingStatus = "complete"
	SourcingStatusMOQRequired SourcingStatus = "MOQ required"
	SourcingStatusPrice       SourcingStatus = "price"
	SourcingStatusFailed      SourcingStatus = "failed"
)

// SourcingStatuses lista os status aceitos, na ordem exibida no dashboard
var SourcingStatuses = []SourcingStatus{
	SourcingStatusInProgress,
	SourcingStatusNegotiation,
	SourcingStatusComplete,
	SourcingStatusMOQRequired,
	SourcingStatusPrice,
	SourcingStatusFailed,
}

type Product struct {
	ID             string         `json:"id"`
	OwnerID        int            `json:"owner_id"`
	Name           string         `json:"name"`
	Variant        *string        `json:"variant"`
	Supplier       *string        `json:"supplier"`
	UnitCost       float64        `json:"unit_cost"`
	BasePrice      float64        `json:"base_price"`
	Fees           float64        `json:"fees"`
	SourcingStatus SourcingStatus `json:"sourcing_status"`
	UnitsSold      int            `json:"units_sold"`
	TotalSales     float64        `json:"total_sales"`
	ProfitMargin   float64        `json:"profit_margin"`
	SalesHistory   []SaleRecord   `json:"sales_history"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SaleRecord é uma venda registrada no histórico do produto.
// ID é atribuído pela aplicação na inserção; TransactionID pode vir do cliente.
type SaleRecord struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	UnitsSold     int       `json:"units_sold"`
	Revenue       float64   `json:"revenue"`
	Notes         string    `json:"notes,omitempty"`
	TransactionID string    `json:"transaction_id"`

	// RawDate guarda a data armazenada que não pôde ser interpretada. A venda fica
	// fora das agregações, mas o valor é regravado sem alteração.
	RawDate string `json:"-"`
}

// UnitProfit é o lucro por unidade com os custos atuais do produto
func (p *Product) UnitProfit() float64 {
	return p.BasePrice - p.UnitCost - p.Fees
}

// SaleProfit calcula o lucro de uma venda usando os custos atuais do produto
func (p *Product) SaleProfit(sale SaleRecord) float64 {
	units := float64(sale.UnitsSold)
	return sale.Revenue - p.UnitCost*units - p.Fees*units
}

// RecalculateTotals recalcula os campos derivados a partir do histórico completo.
// Os campos nunca são ajustados incrementalmente.
func (p *Product) RecalculateTotals() {
	unitsSold := 0
	totalSales := 0.0
	for _, sale := range p.SalesHistory {
		unitsSold += sale.UnitsSold
		totalSales += sale.Revenue
	}

	p.UnitsSold = unitsSold
	p.TotalSales = totalSales
	p.ProfitMargin = 0

	if totalSales > 0 {
		units := float64(unitsSold)
		totalCost := p.UnitCost*units + p.Fees*units
		p.ProfitMargin = (totalSales - totalCost) / totalSales * 100
	}
}

// TotalsDrifted indica se os campos derivados divergem do histórico
func (p *Product) TotalsDrifted() bool {
	fresh := *p
	fresh.RecalculateTotals()

	return fresh.UnitsSold != p.UnitsSold ||
		!almostEqual(fresh.TotalSales, p.TotalSales) ||
		!almostEqual(fresh.ProfitMargin, p.ProfitMargin)
}

// FindSale localiza uma venda pelo ID interno, pelo transaction_id ou,
// por último, comparando o identificador como número.
func (p *Product) FindSale(identifier string) (int, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return -1, false
	}

	for i, sale := range p.SalesHistory {
		if sale.ID == identifier {
			return i, true
		}
	}

	for i, sale := range p.SalesHistory {
		if sale.TransactionID != "" && sale.TransactionID == identifier {
			return i, true
		}
	}

	numeric, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return -1, false
	}

	for i, sale := range p.SalesHistory {
		n, err := strconv.ParseInt(sale.TransactionID, 10, 64)
		if err == nil && n == numeric {
			return i, true
		}
	}

	return -1, false
}

// AddSale adiciona uma venda ao histórico, atribuindo os identificadores ausentes
func (p *Product) AddSale(sale SaleRecord, now time.Time) SaleRecord {
	sale.ID = uuid.New().String()
	if sale.TransactionID == "" {
		sale.TransactionID = strconv.FormatInt(now.UnixMilli(), 10)
	}

	p.SalesHistory = append(p.SalesHistory, sale)
	p.RecalculateTotals()

	return sale
}

// UpdateSale substitui os dados de uma venda preservando os dois identificadores
func (p *Product) UpdateSale(identifier string, patch SaleRecord) (SaleRecord, bool) {
	idx, found := p.FindSale(identifier)
	if !found {
		return SaleRecord{}, false
	}

	current := p.SalesHistory[idx]
	patch.ID = current.ID
	patch.TransactionID = current.TransactionID
	if patch.Date.IsZero() {
		patch.Date = current.Date
		patch.RawDate = current.RawDate
	}

	p.SalesHistory[idx] = patch
	p.RecalculateTotals()

	return patch, true
}

// DeleteSale remove uma venda do histórico
func (p *Product) DeleteSale(identifier string) bool {
	idx, found := p.FindSale(identifier)
	if !found {
		return false
	}

	p.SalesHistory = append(p.SalesHistory[:idx], p.SalesHistory[idx+1:]...)
	p.RecalculateTotals()

	return true
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.0001
}
