package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tariff/internal/model"
)

// snapshot is one immutable generation of the store. Writers build a new
// snapshot and swap the pointer; readers load whichever generation is current
// and never observe a half-written record.
type snapshot struct {
	rules      map[string]model.ChargeRule           // by rule ID
	scopeIndex map[model.ChargeKind]map[string]string // scope key -> rule ID
	rates      map[string]model.CurrencyRate          // by currency code
}

func emptySnapshot() *snapshot {
	return &snapshot{
		rules:      map[string]model.ChargeRule{},
		scopeIndex: map[model.ChargeKind]map[string]string{},
		rates:      map[string]model.CurrencyRate{},
	}
}

// clone copies every map so the new generation can be mutated freely while
// readers keep using the old one.
func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		rules:      make(map[string]model.ChargeRule, len(s.rules)),
		scopeIndex: make(map[model.ChargeKind]map[string]string, len(s.scopeIndex)),
		rates:      make(map[string]model.CurrencyRate, len(s.rates)),
	}
	for id, r := range s.rules {
		next.rules[id] = r
	}
	for kind, idx := range s.scopeIndex {
		m := make(map[string]string, len(idx))
		for k, v := range idx {
			m[k] = v
		}
		next.scopeIndex[kind] = m
	}
	for code, r := range s.rates {
		next.rates[code] = r
	}
	return next
}

// MemoryStore is the in-process view of the rule and rate tables used on the
// trade hot path. Reads are lock-free against an atomic snapshot; writes are
// serialized and publish a full replacement snapshot, so an in-flight Resolve
// sees either the pre-update or post-update state, never a mix.
type MemoryStore struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.snap.Store(emptySnapshot())
	return s
}

func (s *MemoryStore) CreateRule(_ context.Context, rule model.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if idx, ok := cur.scopeIndex[rule.Kind]; ok {
		if _, exists := idx[rule.Scope.Key()]; exists {
			return fmt.Errorf("rule %s %s: %w", rule.Kind, rule.Scope, model.ErrDuplicateScope)
		}
	}
	next := cur.clone()
	next.rules[rule.ID] = rule
	if next.scopeIndex[rule.Kind] == nil {
		next.scopeIndex[rule.Kind] = map[string]string{}
	}
	next.scopeIndex[rule.Kind][rule.Scope.Key()] = rule.ID
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) UpdateRule(_ context.Context, rule model.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	prev, ok := cur.rules[rule.ID]
	if !ok {
		return fmt.Errorf("rule %s: %w", rule.ID, model.ErrNotFound)
	}
	// A rescope may not collide with another rule of the same kind.
	if holder, exists := cur.scopeIndex[rule.Kind][rule.Scope.Key()]; exists && holder != rule.ID {
		return fmt.Errorf("rule %s %s: %w", rule.Kind, rule.Scope, model.ErrDuplicateScope)
	}
	next := cur.clone()
	delete(next.scopeIndex[prev.Kind], prev.Scope.Key())
	next.rules[rule.ID] = rule
	if next.scopeIndex[rule.Kind] == nil {
		next.scopeIndex[rule.Kind] = map[string]string{}
	}
	next.scopeIndex[rule.Kind][rule.Scope.Key()] = rule.ID
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	rule, ok := cur.rules[id]
	if !ok {
		return fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
	}
	next := cur.clone()
	delete(next.rules, id)
	delete(next.scopeIndex[rule.Kind], rule.Scope.Key())
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) GetRule(_ context.Context, id string) (model.ChargeRule, error) {
	rule, ok := s.snap.Load().rules[id]
	if !ok {
		return model.ChargeRule{}, fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
	}
	return rule, nil
}

func (s *MemoryStore) ListRules(_ context.Context, kind model.ChargeKind) ([]model.ChargeRule, error) {
	cur := s.snap.Load()
	var out []model.ChargeRule
	for _, r := range cur.rules {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateRate(_ context.Context, rate model.CurrencyRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, exists := cur.rates[rate.Code]; exists {
		return fmt.Errorf("currency %s: %w", rate.Code, model.ErrDuplicateCode)
	}
	next := cur.clone()
	next.rates[rate.Code] = rate
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) UpdateRate(_ context.Context, rate model.CurrencyRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.rates[rate.Code]; !ok {
		return fmt.Errorf("currency %s: %w", rate.Code, model.ErrNotFound)
	}
	next := cur.clone()
	next.rates[rate.Code] = rate
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) DeleteRate(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.rates[code]; !ok {
		return fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	next := cur.clone()
	delete(next.rates, code)
	s.snap.Store(next)
	return nil
}

func (s *MemoryStore) GetRate(_ context.Context, code string) (model.CurrencyRate, error) {
	rate, ok := s.snap.Load().rates[code]
	if !ok {
		return model.CurrencyRate{}, fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	return rate, nil
}

func (s *MemoryStore) ListRates(_ context.Context) ([]model.CurrencyRate, error) {
	cur := s.snap.Load()
	out := make([]model.CurrencyRate, 0, len(cur.rates))
	for _, r := range cur.rates {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) UpdateBaseRate(_ context.Context, code string, rateToUSD float64) error {
	if rateToUSD <= 0 {
		return fmt.Errorf("currency %s: rate %v: %w", code, rateToUSD, model.ErrInvalidRateValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	rate, ok := cur.rates[code]
	if !ok {
		return fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	rate.RateToUSD = rateToUSD
	rate.UpdatedAt = time.Now().UTC()
	next := cur.clone()
	next.rates[code] = rate
	s.snap.Store(next)
	return nil
}

var _ Repository = (*MemoryStore)(nil)
