package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
)

// MemoryStockRepository keeps the stock ledger in memory. Products not seeded
// explicitly are created on first access with the initial quantity.
type MemoryStockRepository struct {
	mu              sync.RWMutex
	stocks          map[string]*domain.StockItem
	movements       map[string]*domain.StockMovement
	initialQuantity int
}

// NewMemoryStockRepository creates a repository seeded with the given stock
func NewMemoryStockRepository(seed map[string]int, initialQuantity int) *MemoryStockRepository {
	stocks := make(map[string]*domain.StockItem, len(seed))
	for product, quantity := range seed {
		stocks[product] = domain.NewStockItem(product, quantity)
	}
	return &MemoryStockRepository{
		stocks:          stocks,
		movements:       make(map[string]*domain.StockMovement),
		initialQuantity: initialQuantity,
	}
}

// FindByProduct returns the stock item for a product, seeding it when unseen
func (r *MemoryStockRepository) FindByProduct(_ context.Context, product string) (*domain.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.stocks[product]
	if !exists {
		item = domain.NewStockItem(product, r.initialQuantity)
		r.stocks[product] = item
	}
	copied := *item
	return &copied, nil
}

// SaveStock replaces the stock item for its product
func (r *MemoryStockRepository) SaveStock(_ context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *item
	r.stocks[item.Product] = &copied
	return nil
}

// FindAllStocks returns all stock items sorted by product
func (r *MemoryStockRepository) FindAllStocks(_ context.Context) ([]*domain.StockItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.StockItem, 0, len(r.stocks))
	for _, item := range r.stocks {
		copied := *item
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Product < result[j].Product })
	return result, nil
}

// FindMovement returns the movement for an order, or ErrMovementNotFound
func (r *MemoryStockRepository) FindMovement(_ context.Context, orderID string) (*domain.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movement, exists := r.movements[orderID]
	if !exists {
		return nil, domain.ErrMovementNotFound
	}
	copied := *movement
	return &copied, nil
}

// SaveMovement inserts or replaces the movement for its order ID
func (r *MemoryStockRepository) SaveMovement(_ context.Context, movement *domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *movement
	r.movements[movement.OrderID] = &copied
	return nil
}
