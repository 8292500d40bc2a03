package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/catalog"
)

// LineItem is the ephemeral checkout input: a product reference plus a
// requested quantity. It is never persisted.
type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput is one checkout submission.
type PlaceOrderInput struct {
	Items       []LineItem `json:"items"`
	TotalAmount int        `json:"totalAmount"`
}

// Service orchestrates stock validation, stock deduction and order
// creation for a checkout submission, and handles cancellation.
type Service struct {
	products catalog.Store
	orders   Store
	log      *slog.Logger
}

func NewService(products catalog.Store, orders Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{products: products, orders: orders, log: log}
}

// Place reserves stock for every line and records a new order, or fails
// without leaving partial reservations behind.
//
// The reservation runs in three steps. First every line's product is
// read and checked against the requested quantity; nothing has been
// written if this fails. Then each product's stock is decremented with a
// conditional write that only applies while stock >= quantity, which is
// what stops two concurrent checkouts from driving stock negative. A
// validation pass cannot prevent that on its own because stock may
// change between the read and the write. If a decrement fails partway
// through, the decrements already applied in this call are compensated
// with increments before the error is returned, so a failed multi-line
// order does not leak reserved stock. Finally the order record is
// written with snapshot copies of the product fields taken during
// validation.
func (s *Service) Place(ctx context.Context, userID string, input PlaceOrderInput) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if len(input.Items) == 0 || input.TotalAmount <= 0 {
		return nil, ErrInvalidRequest
	}
	for _, line := range input.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, ErrInvalidRequest
		}
	}

	// Step 1: validate stock for every line before touching anything.
	// Snapshots are captured here, from the store's view of the product,
	// never from client-supplied fields.
	items := make([]OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		p, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, fmt.Errorf("looking up product %s: %w", line.ProductID, err)
		}
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
		items = append(items, OrderItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Quantity:    line.Quantity,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		})
	}

	// Step 2: reserve stock line by line with conditional decrements.
	for i, line := range input.Items {
		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.compensate(ctx, input.Items[:i])
			if errors.Is(err, catalog.ErrStockConflict) {
				return nil, &StockConflictError{ProductID: line.ProductID}
			}
			return nil, fmt.Errorf("reserving stock for product %s: %w", line.ProductID, err)
		}
	}

	// Step 3: commit the order.
	now := time.Now()
	o := &Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       items,
		TotalAmount: input.TotalAmount,
		Status:      StatusPlaced,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.compensate(ctx, input.Items)
		return nil, fmt.Errorf("creating order: %w", err)
	}

	return o, nil
}

// compensate restores stock decremented earlier in the same call. Best
// effort: a failed increment is logged and the remaining lines are still
// attempted, the caller's original error is what surfaces.
func (s *Service) compensate(ctx context.Context, reserved []LineItem) {
	for _, line := range reserved {
		if err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.log.Error("stock compensation failed",
				"product_id", line.ProductID,
				"quantity", line.Quantity,
				"error", err)
		}
	}
}

// Cancel transitions the caller's order from Placed to Cancelled.
// Orders that do not exist and orders owned by someone else both report
// ErrOrderNotFound. Stock is not restored on cancellation.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.orders.CancelForUser(ctx, orderID, userID)
}

// ListForUser returns the caller's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.orders.ListByUser(ctx, userID)
}
