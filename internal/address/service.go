package address

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AddressInput carries the writable address fields.
type AddressInput struct {
	Label     string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"address"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add saves a new address in the user's address book.
func (s *Service) Add(ctx context.Context, userID string, in AddressInput) (*Address, error) {
	if in.Label == "" || in.FirstName == "" || in.LastName == "" || in.Street == "" ||
		in.City == "" || in.State == "" || in.Zip == "" || in.Country == "" {
		return nil, ErrMissingField
	}

	now := time.Now()
	a := &Address{
		ID:        uuid.New().String(),
		UserID:    userID,
		Label:     in.Label,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Street:    in.Street,
		Apartment: in.Apartment,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Country:   in.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Address, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes an address the user owns. A non-owner gets
// ErrAddressNotFound, never a hint that the address exists.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	if a.UserID != userID {
		return ErrAddressNotFound
	}
	return s.store.Delete(ctx, id)
}
