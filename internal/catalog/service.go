package catalog

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ProductInput carries the writable product fields for create/update.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func validate(in ProductInput) error {
	// Length limits count characters, not bytes.
	if in.Name == "" || utf8.RuneCountInString(in.Name) > maxNameLength {
		return ErrInvalidName
	}
	if in.Price <= 0 {
		return ErrInvalidPrice
	}
	if in.Stock < 0 {
		return ErrInvalidStock
	}
	if in.Description == "" || in.ImageURL == "" || in.Category == "" {
		return ErrMissingField
	}
	return nil
}

func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	return s.store.List(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

// Create adds a product owned by the given seller.
func (s *Service) Create(ctx context.Context, sellerID string, in ProductInput) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		Stock:       in.Stock,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the writable fields of a product the seller owns.
func (s *Service) Update(ctx context.Context, sellerID, id string, in ProductInput) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, ErrNotSeller
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Category = in.Category
	p.Stock = in.Stock
	p.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product the seller owns.
func (s *Service) Delete(ctx context.Context, sellerID, id string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return ErrNotSeller
	}
	return s.store.Delete(ctx, id)
}
