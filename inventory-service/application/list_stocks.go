package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
)

// ListStocksResponse holds the whole stock ledger
type ListStocksResponse struct {
	Stocks []*domain.StockItem `json:"stocks"`
	Count  int                 `json:"count"`
}

// ListStocks use case
type ListStocks struct {
	stocks domain.StockRepository
}

// NewListStocks creates a new ListStocks use case
func NewListStocks(stocks domain.StockRepository) *ListStocks {
	return &ListStocks{stocks: stocks}
}

// Execute returns all stock items
func (uc *ListStocks) Execute(ctx context.Context) (*ListStocksResponse, error) {
	stocks, err := uc.stocks.FindAllStocks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stocks")
	}
	return &ListStocksResponse{Stocks: stocks, Count: len(stocks)}, nil
}
