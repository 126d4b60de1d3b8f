package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/customer-service/domain"
)

// ListHistoryResponse holds the full purchase history
type ListHistoryResponse struct {
	History []*domain.HistoryEntry `json:"history"`
	Count   int                    `json:"count"`
}

// ListHistory use case
type ListHistory struct {
	history domain.HistoryRepository
}

// NewListHistory creates a new ListHistory use case
func NewListHistory(history domain.HistoryRepository) *ListHistory {
	return &ListHistory{history: history}
}

// Execute returns all history entries
func (uc *ListHistory) Execute(ctx context.Context) (*ListHistoryResponse, error) {
	entries, err := uc.history.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list history entries")
	}
	return &ListHistoryResponse{
		History: entries,
		Count:   len(entries),
	}, nil
}
