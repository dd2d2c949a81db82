package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-checkout/cafe-svc/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

const ownerAddress = "0xAbC0000000000000000000000000000000000001"

func TestBusinessBox_OpenUnknownAddress(t *testing.T) {
	_, client := newTestRedis(t)
	box := NewBusinessBox(client)

	data, menu, err := box.Open(context.Background(), ownerAddress)

	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Nil(t, menu)
}

func TestBusinessBox_SetAndOpen(t *testing.T) {
	mr, client := newTestRedis(t)
	box := NewBusinessBox(client)
	ctx := context.Background()

	data := domain.BusinessData{
		Profile:  domain.Profile{ID: "blue-cup", Name: "Blue Cup"},
		Settings: domain.DefaultSettings(),
	}
	menu := []domain.MenuItem{{ID: "scone", Name: "Scone", Price: decimal.RequireFromString("2.5")}}

	require.NoError(t, box.SetData(ctx, ownerAddress, data))
	require.NoError(t, box.SetMenu(ctx, ownerAddress, menu))

	gotData, gotMenu, err := box.Open(ctx, ownerAddress)
	require.NoError(t, err)
	require.NotNil(t, gotData)
	assert.Equal(t, "Blue Cup", gotData.Profile.Name)
	assert.Equal(t, "USD", gotData.Settings.NativeCurrency)
	require.Len(t, gotMenu, 1)
	assert.True(t, gotMenu[0].Price.Equal(decimal.RequireFromString("2.5")))

	indexed, err := mr.Get("business:id:blue-cup")
	require.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", indexed)
}

func TestBusinessBox_Lookup(t *testing.T) {
	_, client := newTestRedis(t)
	box := NewBusinessBox(client)
	ctx := context.Background()

	require.NoError(t, box.SetData(ctx, ownerAddress, domain.BusinessData{Profile: domain.Profile{ID: "blue-cup", Name: "Blue Cup"}}))

	data, menu, err := box.Lookup(ctx, "blue-cup")
	require.NoError(t, err)
	assert.Equal(t, "blue-cup", data.Profile.ID)
	assert.Empty(t, menu)

	_, _, err = box.Lookup(ctx, "green-mug")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

const rivalAddress = "0xDEF0000000000000000000000000000000000002"

func TestBusinessBox_SetDataClaimsID(t *testing.T) {
	mr, client := newTestRedis(t)
	box := NewBusinessBox(client)
	ctx := context.Background()

	blueCup := domain.BusinessData{Profile: domain.Profile{ID: "blue-cup", Name: "Blue Cup"}}
	require.NoError(t, box.SetData(ctx, ownerAddress, blueCup))

	err := box.SetData(ctx, rivalAddress, domain.BusinessData{Profile: domain.Profile{ID: "blue-cup", Name: "Blue Cup"}})
	assert.ErrorIs(t, err, ErrBusinessIDTaken)

	indexed, err := mr.Get("business:id:blue-cup")
	require.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", indexed)
	assert.False(t, mr.Exists("business:0xdef0000000000000000000000000000000000002:data"))

	data, _, err := box.Lookup(ctx, "blue-cup")
	require.NoError(t, err)
	assert.Equal(t, "Blue Cup", data.Profile.Name)

	// the owner may save again under the same id
	blueCup.Profile.Description = "Coffee"
	assert.NoError(t, box.SetData(ctx, ownerAddress, blueCup))
}

func TestBusinessBox_SetDataReleasesOldID(t *testing.T) {
	mr, client := newTestRedis(t)
	box := NewBusinessBox(client)
	ctx := context.Background()

	require.NoError(t, box.SetData(ctx, ownerAddress, domain.BusinessData{Profile: domain.Profile{ID: "blue-cup", Name: "Blue Cup"}}))
	require.NoError(t, box.SetData(ctx, ownerAddress, domain.BusinessData{Profile: domain.Profile{ID: "red-cup", Name: "Red Cup"}}))

	assert.False(t, mr.Exists("business:id:blue-cup"))
	_, _, err := box.Lookup(ctx, "blue-cup")
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	require.NoError(t, box.SetData(ctx, rivalAddress, domain.BusinessData{Profile: domain.Profile{ID: "blue-cup", Name: "Blue Cup"}}))
	data, _, err := box.Lookup(ctx, "red-cup")
	require.NoError(t, err)
	assert.Equal(t, "Red Cup", data.Profile.Name)
}

func TestBusinessBox_SetMenuEmpty(t *testing.T) {
	mr, client := newTestRedis(t)
	box := NewBusinessBox(client)

	require.NoError(t, box.SetMenu(context.Background(), ownerAddress, nil))

	stored, err := mr.Get("business:0xabc0000000000000000000000000000000000001:menu")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
}

func TestBalanceCache(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()

	key := cache.BalanceKey(ownerAddress, "usd")
	assert.Equal(t, "balance:0xabc0000000000000000000000000000000000001:USD", key)

	_, found, err := cache.GetBalance(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetBalance(ctx, key, decimal.RequireFromString("183.25")))
	value, found, err := cache.GetBalance(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "183.25", value.String())

	mr.FastForward(2 * time.Minute)
	_, found, err = cache.GetBalance(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSalesStore_RecordAndTopItems(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSalesStore(client)
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day }
	ctx := context.Background()

	require.NoError(t, store.RecordSale(ctx, "blue-cup", []domain.OrderEventItem{
		{ItemID: "espresso", Quantity: 2},
		{ItemID: "scone", Quantity: 1},
	}))
	require.NoError(t, store.RecordSale(ctx, "blue-cup", []domain.OrderEventItem{
		{ItemID: "scone", Quantity: 3},
	}))

	top, err := store.TopItems(ctx, "blue-cup", 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemSales{
		{ItemID: "scone", Quantity: 4},
		{ItemID: "espresso", Quantity: 2},
	}, top)

	top, err = store.TopItems(ctx, "blue-cup", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	top, err = store.TopItems(ctx, "blue-cup", -3)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	score, err := mr.ZScore("sales:alltime:blue-cup", "scone")
	require.NoError(t, err)
	assert.Equal(t, 4.0, score)
	assert.True(t, mr.TTL("sales:daily:2024-03-01:blue-cup") > 0)
}
