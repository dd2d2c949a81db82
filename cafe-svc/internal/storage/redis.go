package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"cafe-checkout/cafe-svc/internal/domain"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrBusinessIDTaken  = errors.New("business id is taken by another wallet")
)

// BusinessBox keeps each business's profile, settings and menu in Redis,
// keyed by the owner's wallet address.
type BusinessBox struct {
	Client *redis.Client
}

func NewBusinessBox(client *redis.Client) *BusinessBox {
	return &BusinessBox{Client: client}
}

func (b *BusinessBox) dataKey(address string) string {
	return "business:" + strings.ToLower(address) + ":data"
}

func (b *BusinessBox) menuKey(address string) string {
	return "business:" + strings.ToLower(address) + ":menu"
}

func (b *BusinessBox) idKey(businessID string) string {
	return "business:id:" + businessID
}

// Open returns the record owned by address. A nil record means the address
// has not signed up yet.
func (b *BusinessBox) Open(ctx context.Context, address string) (*domain.BusinessData, []domain.MenuItem, error) {
	raw, err := b.Client.MGet(ctx, b.dataKey(address), b.menuKey(address)).Result()
	if err != nil {
		return nil, nil, err
	}

	var data *domain.BusinessData
	if s, ok := raw[0].(string); ok {
		data = &domain.BusinessData{}
		if err := json.Unmarshal([]byte(s), data); err != nil {
			return nil, nil, fmt.Errorf("decode business data: %w", err)
		}
	}
	var menu []domain.MenuItem
	if s, ok := raw[1].(string); ok {
		if err := json.Unmarshal([]byte(s), &menu); err != nil {
			return nil, nil, fmt.Errorf("decode menu: %w", err)
		}
	}
	return data, menu, nil
}

// Lookup resolves a public business id to its record.
func (b *BusinessBox) Lookup(ctx context.Context, businessID string) (*domain.BusinessData, []domain.MenuItem, error) {
	address, err := b.Client.Get(ctx, b.idKey(businessID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	data, menu, err := b.Open(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, ErrBusinessNotFound
	}
	return data, menu, nil
}

// SetData stores the record of address and claims its public business id.
// An id already claimed by a different address fails with
// ErrBusinessIDTaken; an id the record no longer uses is released.
func (b *BusinessBox) SetData(ctx context.Context, address string, data domain.BusinessData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	owner := strings.ToLower(address)
	dataKey := b.dataKey(address)
	watched := []string{dataKey}
	if data.Profile.ID != "" {
		watched = append(watched, b.idKey(data.Profile.ID))
	}

	return b.Client.Watch(ctx, func(tx *redis.Tx) error {
		if data.Profile.ID != "" {
			current, err := tx.Get(ctx, b.idKey(data.Profile.ID)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && current != owner {
				return ErrBusinessIDTaken
			}
		}

		previousID, err := b.storedID(ctx, tx, dataKey)
		if err != nil {
			return err
		}
		var releaseOld bool
		if previousID != "" && previousID != data.Profile.ID {
			current, err := tx.Get(ctx, b.idKey(previousID)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			releaseOld = current == owner
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dataKey, payload, 0)
			if data.Profile.ID != "" {
				pipe.Set(ctx, b.idKey(data.Profile.ID), owner, 0)
			}
			if releaseOld {
				pipe.Del(ctx, b.idKey(previousID))
			}
			return nil
		})
		return err
	}, watched...)
}

func (b *BusinessBox) storedID(ctx context.Context, tx *redis.Tx, dataKey string) (string, error) {
	raw, err := tx.Get(ctx, dataKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var stored domain.BusinessData
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", fmt.Errorf("decode business data: %w", err)
	}
	return stored.Profile.ID, nil
}

func (b *BusinessBox) SetMenu(ctx context.Context, address string, menu []domain.MenuItem) error {
	if menu == nil {
		menu = []domain.MenuItem{}
	}
	payload, err := json.Marshal(menu)
	if err != nil {
		return err
	}
	return b.Client.Set(ctx, b.menuKey(address), payload, 0).Err()
}

type BalanceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{Client: client, TTL: ttl}
}

func (c *BalanceCache) BalanceKey(address, currency string) string {
	return "balance:" + strings.ToLower(address) + ":" + strings.ToUpper(currency)
}

func (c *BalanceCache) GetBalance(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	res, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	value, err := decimal.NewFromString(res)
	if err != nil {
		return decimal.Zero, false, err
	}
	return value, true, nil
}

func (c *BalanceCache) SetBalance(ctx context.Context, key string, value decimal.Decimal) error {
	return c.Client.Set(ctx, key, value.String(), c.TTL).Err()
}

// SalesStore ranks menu items by quantity sold, per business and day.
type SalesStore struct {
	Client *redis.Client
	now    func() time.Time
}

func NewSalesStore(client *redis.Client) *SalesStore {
	return &SalesStore{Client: client, now: time.Now}
}

func (s *SalesStore) dailyKey(businessID string, day time.Time) string {
	return fmt.Sprintf("sales:daily:%s:%s", day.Format("2006-01-02"), businessID)
}

func (s *SalesStore) allTimeKey(businessID string) string {
	return "sales:alltime:" + businessID
}

func (s *SalesStore) RecordSale(ctx context.Context, businessID string, items []domain.OrderEventItem) error {
	dailyKey := s.dailyKey(businessID, s.now())
	allTimeKey := s.allTimeKey(businessID)
	_, err := s.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, item := range items {
			pipe.ZIncrBy(ctx, dailyKey, float64(item.Quantity), item.ItemID)
			pipe.ZIncrBy(ctx, allTimeKey, float64(item.Quantity), item.ItemID)
		}
		pipe.Expire(ctx, dailyKey, 7*24*time.Hour)
		return nil
	})
	return err
}

// TopItems returns today's best sellers for the business, highest first.
// A limit below one falls back to ten.
func (s *SalesStore) TopItems(ctx context.Context, businessID string, limit int) ([]domain.ItemSales, error) {
	if limit < 1 {
		limit = 10
	}
	res, err := s.Client.ZRevRangeWithScores(ctx, s.dailyKey(businessID, s.now()), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]domain.ItemSales, 0, len(res))
	for _, z := range res {
		member, _ := z.Member.(string)
		items = append(items, domain.ItemSales{ItemID: member, Quantity: z.Score})
	}
	return items, nil
}
