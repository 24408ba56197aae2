package cart

import (
	"context"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wichananm65/ticket-shop-backend/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewService(NewSlotRepository(store), zap.NewNop()), store
}

func randomItem() LineItem {
	ref := gofakeit.UUID()
	option := gofakeit.RandomString([]string{"", "VIP", "GA", "L"})
	return LineItem{
		ID:        LineID(ref, option),
		Kind:      Kind(gofakeit.RandomString([]string{string(KindEvent), string(KindProduct)})),
		Title:     gofakeit.ProductName(),
		ImageRef:  gofakeit.URL(),
		Option:    option,
		UnitPrice: int64(gofakeit.IntRange(0, 5000)),
		Quantity:  gofakeit.IntRange(1, 5),
	}
}

func TestService_LoadMissingIsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	cart, err := svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int64(0), cart.Version)
}

func TestService_LoadCorruptIsEmptyAndLogged(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"not json", `{"oops"`},
		{"not a list", `{"id":"a"}`},
		{"zero quantity", `[{"id":"a","kind":"event","unitPrice":500,"quantity":0}]`},
		{"negative price", `[{"id":"a","kind":"event","unitPrice":-500,"quantity":1}]`},
		{"unknown kind", `[{"id":"a","kind":"voucher","unitPrice":500,"quantity":1}]`},
		{"empty id", `[{"id":"","kind":"product","unitPrice":500,"quantity":1}]`},
		{"line total overflows", `[{"id":"a","kind":"product","unitPrice":9223372036854775807,"quantity":2}]`},
		{"cart total overflows", `[{"id":"a","kind":"product","unitPrice":9223372036854775807,"quantity":1},{"id":"b","kind":"product","unitPrice":1,"quantity":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Seed(storage.Key("42", storage.SlotCartItems), []byte(tt.stored))
			core, logs := observer.New(zap.WarnLevel)
			svc := NewService(NewSlotRepository(store), zap.New(core))

			cart, err := svc.Load(context.Background(), "42")
			require.NoError(t, err)
			assert.True(t, cart.IsEmpty())
			assert.Equal(t, int64(1), cart.Version)
			assert.Equal(t, 1, logs.FilterMessage("discarding corrupt cart").Len())

			// the next write replaces the corrupt slot
			cart, err = svc.Add(context.Background(), "42", randomItem())
			require.NoError(t, err)
			assert.Len(t, cart.Items, 1)
			assert.Equal(t, int64(2), cart.Version)
		})
	}
}

func TestService_RejectsOverflowingTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	huge := LineItem{ID: "gala-1:VIP", Kind: KindEvent, UnitPrice: math.MaxInt64 / 2, Quantity: 1}

	_, err := svc.Add(ctx, "42", LineItem{ID: "gala-1", Kind: KindEvent, UnitPrice: math.MaxInt64, Quantity: 2})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = svc.Add(ctx, "42", huge)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, "42", 0, 3)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = svc.Add(ctx, "42", huge)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "42", huge)
	assert.ErrorIs(t, err, ErrInvalidItem)

	cart, err := svc.Load(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestService_AddNeverMerges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	item := randomItem()

	_, err := svc.Add(ctx, "42", item)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, "42", item)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, cart.Items[0], cart.Items[1])
}

func TestService_AddClampsQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	item := randomItem()
	item.Quantity = -3

	cart, err := svc.Add(context.Background(), "42", item)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestService_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LineItem)
	}{
		{name: "empty id", mutate: func(i *LineItem) { i.ID = "" }},
		{name: "unknown kind", mutate: func(i *LineItem) { i.Kind = "voucher" }},
		{name: "negative price", mutate: func(i *LineItem) { i.UnitPrice = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			item := randomItem()
			tt.mutate(&item)

			_, err := svc.Add(context.Background(), "42", item)
			assert.ErrorIs(t, err, ErrInvalidItem)

			_, err = store.Get(context.Background(), storage.Key("42", storage.SlotCartItems))
			assert.ErrorIs(t, err, storage.ErrSlotNotFound)
		})
	}
}

func TestService_AddThenRemoveRoundTrips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var before Cart
	for i := 0; i < 3; i++ {
		var err error
		before, err = svc.Add(ctx, "42", randomItem())
		require.NoError(t, err)
	}

	added, err := svc.Add(ctx, "42", randomItem())
	require.NoError(t, err)
	after, err := svc.Remove(ctx, "42", len(added.Items)-1)
	require.NoError(t, err)

	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Total(), after.Total())
}

func TestService_SetQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, "42", LineItem{ID: "concert-1:VIP", Kind: KindEvent, UnitPrice: 1800, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, "42", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), cart.Total())

	cart, err = svc.SetQuantity(ctx, "42", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	_, err = svc.SetQuantity(ctx, "42", 1, 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
	_, err = svc.Remove(ctx, "42", -1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestService_Clear(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, "42", randomItem())
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, "42")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	reloaded, err := svc.Load(ctx, "42")
	require.NoError(t, err)
	assert.True(t, reloaded.IsEmpty())
	assert.Equal(t, cart.Version, reloaded.Version)
}

func TestService_ClearAtStaleVersion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	quoted, err := svc.Add(ctx, "42", randomItem())
	require.NoError(t, err)
	_, err = svc.Add(ctx, "42", randomItem())
	require.NoError(t, err)

	_, err = svc.ClearAt(ctx, "42", quoted.Version)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	cart, err := svc.Load(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

// racingRepository saves a competing write right after every load.
type racingRepository struct {
	*SlotRepository
}

func (r racingRepository) Load(ctx context.Context, owner string) ([]LineItem, int64, error) {
	items, version, err := r.SlotRepository.Load(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	if _, err := r.SlotRepository.Save(ctx, owner, append(items, randomItem()), version); err != nil {
		return nil, 0, err
	}
	return items, version, nil
}

func TestService_ConcurrentWriterIsSurfaced(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(racingRepository{NewSlotRepository(store)}, zap.NewNop())

	_, err := svc.Add(context.Background(), "42", randomItem())
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
}
