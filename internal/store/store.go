package store

import (
	"context"

	"meatflow/internal/model"
)

type Store interface {
	UpsertRecords(ctx context.Context, records []model.TradeRecord) error
	ListRecords(ctx context.Context, filter Filter) ([]model.TradeRecord, error)
	ListYears(ctx context.Context) ([]int, error)
	Close() error
}

// Filter narrows ListRecords. Zero values match everything.
type Filter struct {
	FromYear int
	ToYear   int
}

func (f Filter) Match(year int) bool {
	if f.FromYear != 0 && year < f.FromYear {
		return false
	}
	if f.ToYear != 0 && year > f.ToYear {
		return false
	}
	return true
}

type NopStore struct{}

func (s *NopStore) UpsertRecords(ctx context.Context, records []model.TradeRecord) error {
	_ = ctx
	_ = records
	return nil
}

func (s *NopStore) ListRecords(ctx context.Context, filter Filter) ([]model.TradeRecord, error) {
	_ = ctx
	_ = filter
	return nil, nil
}

func (s *NopStore) ListYears(ctx context.Context) ([]int, error) {
	_ = ctx
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}
