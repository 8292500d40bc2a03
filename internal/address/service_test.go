package address_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/address"
	"github.com/example/storefront/internal/store/memstore"
)

func newAddressService(t *testing.T) *address.Service {
	t.Helper()
	return address.NewService(memstore.New().Addresses())
}

func validAddress() address.AddressInput {
	return address.AddressInput{
		Label:     "Home",
		FirstName: "Jane",
		LastName:  "Doe",
		Street:    "1 Main St",
		Apartment: "4B",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
		Country:   "USA",
	}
}

func TestAdd_Success(t *testing.T) {
	svc := newAddressService(t)

	a, err := svc.Add(context.Background(), "user-1", validAddress())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "user-1", a.UserID)
	assert.Equal(t, "Home", a.Label)
}

func TestAdd_ApartmentOptional(t *testing.T) {
	svc := newAddressService(t)

	in := validAddress()
	in.Apartment = ""
	_, err := svc.Add(context.Background(), "user-1", in)
	assert.NoError(t, err)
}

func TestAdd_MissingFields(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()

	mutations := []func(*address.AddressInput){
		func(in *address.AddressInput) { in.Label = "" },
		func(in *address.AddressInput) { in.FirstName = "" },
		func(in *address.AddressInput) { in.LastName = "" },
		func(in *address.AddressInput) { in.Street = "" },
		func(in *address.AddressInput) { in.City = "" },
		func(in *address.AddressInput) { in.State = "" },
		func(in *address.AddressInput) { in.Zip = "" },
		func(in *address.AddressInput) { in.Country = "" },
	}

	for _, mutate := range mutations {
		in := validAddress()
		mutate(&in)
		_, err := svc.Add(ctx, "user-1", in)
		assert.ErrorIs(t, err, address.ErrMissingField)
	}
}

func TestListForUser_OnlyOwn(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", validAddress())
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-2", validAddress())
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "user-1", list[0].UserID)
}

func TestDelete_OwnershipOpaque(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, "owner", validAddress())
	require.NoError(t, err)

	// A non-owner cannot tell the address exists.
	err = svc.Delete(ctx, "intruder", a.ID)
	assert.ErrorIs(t, err, address.ErrAddressNotFound)

	require.NoError(t, svc.Delete(ctx, "owner", a.ID))

	err = svc.Delete(ctx, "owner", a.ID)
	assert.ErrorIs(t, err, address.ErrAddressNotFound)
}
