package mocks

import (
	"context"
	"fmt"

	"github.com/okarpov/bankbook/internal/domain"
)

// FakeStore is an in-memory implementation of usecase.Store. By default it
// keeps the last saved snapshot and serves it back on Load; either behavior
// can be overridden per test.
type FakeStore struct {
	Saved     map[string]domain.AccountSnapshot
	SaveCalls int

	LoadFunc func(ctx context.Context) (map[string]domain.AccountSnapshot, error)
	SaveFunc func(ctx context.Context, accounts map[string]domain.AccountSnapshot) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (f *FakeStore) Load(ctx context.Context) (map[string]domain.AccountSnapshot, error) {
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx)
	}
	out := make(map[string]domain.AccountSnapshot, len(f.Saved))
	for number, snap := range f.Saved {
		out[number] = snap
	}
	return out, nil
}

func (f *FakeStore) Save(ctx context.Context, accounts map[string]domain.AccountSnapshot) error {
	f.SaveCalls++
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, accounts)
	}
	f.Saved = make(map[string]domain.AccountSnapshot, len(accounts))
	for number, snap := range accounts {
		f.Saved[number] = snap
	}
	return nil
}

// FakeIDGenerator is a deterministic usecase.IDGenerator returning
// sequential IDs.
type FakeIDGenerator struct {
	GenerateFunc func() string

	n int
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (f *FakeIDGenerator) Generate() string {
	if f.GenerateFunc != nil {
		return f.GenerateFunc()
	}
	f.n++
	return fmt.Sprintf("tx-%04d", f.n)
}
