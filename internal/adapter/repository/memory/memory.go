// Package memory provides an in-memory implementation of the domain
// repositories used for development and tests. It keeps code paths easy to
// follow while allowing the Postgres store to be plugged in unchanged.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// Store is an in-memory implementation of all repository interfaces.
// It is guarded by an RWMutex for concurrent reads and writes.
type Store struct {
	mu           sync.RWMutex
	entities     map[uuid.UUID]domain.TaxEntity
	assets       map[uuid.UUID]domain.Asset
	liabilities  map[uuid.UUID]domain.Liability
	incomes      map[uuid.UUID]domain.Income
	certificates map[uuid.UUID]domain.Certificate
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		entities:     make(map[uuid.UUID]domain.TaxEntity),
		assets:       make(map[uuid.UUID]domain.Asset),
		liabilities:  make(map[uuid.UUID]domain.Liability),
		incomes:      make(map[uuid.UUID]domain.Income),
		certificates: make(map[uuid.UUID]domain.Certificate),
	}
}

// ---- EntityRepository ----

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := e
	return &out, nil
}

func (s *Store) Create(ctx context.Context, entity *domain.TaxEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[entity.ID]; exists {
		return errs.ErrConflict
	}
	s.entities[entity.ID] = *entity
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.TaxEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TaxEntity, 0, len(s.entities))
	for _, e := range s.entities {
		cp := e
		out = append(out, &cp)
	}
	sortByID(out, func(e *domain.TaxEntity) uuid.UUID { return e.ID })
	return out, nil
}

// Entities returns the typed entity repository view of the store.
func (s *Store) Entities() domain.EntityRepository { return s }

// ---- AssetRepository ----

type assetRepo struct{ s *Store }

// Assets returns the typed asset repository view of the store.
func (s *Store) Assets() domain.AssetRepository { return assetRepo{s} }

func (r assetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assets[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := cloneAsset(a)
	return &cp, nil
}

func (r assetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.assets[asset.ID]; exists {
		return errs.ErrConflict
	}
	r.s.assets[asset.ID] = cloneAsset(*asset)
	return nil
}

func (r assetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.assets[asset.ID]; !exists {
		return errs.ErrNotFound
	}
	r.s.assets[asset.ID] = cloneAsset(*asset)
	return nil
}

func (r assetRepo) ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*domain.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Asset
	for _, a := range r.s.assets {
		if !a.SharePercentage(entityID).IsZero() {
			cp := cloneAsset(a)
			out = append(out, &cp)
		}
	}
	sortByID(out, func(a *domain.Asset) uuid.UUID { return a.ID })
	return out, nil
}

func (r assetRepo) List(ctx context.Context) ([]*domain.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Asset, 0, len(r.s.assets))
	for _, a := range r.s.assets {
		cp := cloneAsset(a)
		out = append(out, &cp)
	}
	sortByID(out, func(a *domain.Asset) uuid.UUID { return a.ID })
	return out, nil
}

// ---- LiabilityRepository ----

type liabilityRepo struct{ s *Store }

// Liabilities returns the typed liability repository view of the store.
func (s *Store) Liabilities() domain.LiabilityRepository { return liabilityRepo{s} }

func (r liabilityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Liability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.liabilities[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := cloneLiability(l)
	return &cp, nil
}

func (r liabilityRepo) Create(ctx context.Context, liability *domain.Liability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.liabilities[liability.ID]; exists {
		return errs.ErrConflict
	}
	r.s.liabilities[liability.ID] = cloneLiability(*liability)
	return nil
}

func (r liabilityRepo) Update(ctx context.Context, liability *domain.Liability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.liabilities[liability.ID]; !exists {
		return errs.ErrNotFound
	}
	r.s.liabilities[liability.ID] = cloneLiability(*liability)
	return nil
}

func (r liabilityRepo) ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*domain.Liability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Liability
	for _, l := range r.s.liabilities {
		if !l.SharePercentage(entityID).IsZero() {
			cp := cloneLiability(l)
			out = append(out, &cp)
		}
	}
	sortByID(out, func(l *domain.Liability) uuid.UUID { return l.ID })
	return out, nil
}

func (r liabilityRepo) List(ctx context.Context) ([]*domain.Liability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Liability, 0, len(r.s.liabilities))
	for _, l := range r.s.liabilities {
		cp := cloneLiability(l)
		out = append(out, &cp)
	}
	sortByID(out, func(l *domain.Liability) uuid.UUID { return l.ID })
	return out, nil
}

// ---- IncomeRepository ----

type incomeRepo struct{ s *Store }

// Incomes returns the typed income repository view of the store.
func (s *Store) Incomes() domain.IncomeRepository { return incomeRepo{s} }

func (r incomeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Income, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inc, ok := r.s.incomes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := cloneIncome(inc)
	return &cp, nil
}

func (r incomeRepo) Create(ctx context.Context, income *domain.Income) error {
	if income.Schedule == domain.ScheduleInvestment {
		// Derived records must never be persisted
		return errs.ErrInvalid
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.incomes[income.ID]; exists {
		return errs.ErrConflict
	}
	r.s.incomes[income.ID] = cloneIncome(*income)
	return nil
}

func (r incomeRepo) ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) ([]*domain.Income, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Income
	for _, inc := range r.s.incomes {
		if inc.OwnerID == entityID && inc.TaxYear == year {
			cp := cloneIncome(inc)
			out = append(out, &cp)
		}
	}
	sortByID(out, func(i *domain.Income) uuid.UUID { return i.ID })
	return out, nil
}

// ---- CertificateRepository ----

type certificateRepo struct{ s *Store }

// Certificates returns the typed certificate repository view of the store.
func (s *Store) Certificates() domain.CertificateRepository { return certificateRepo{s} }

func (r certificateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.certificates[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r certificateRepo) Create(ctx context.Context, cert *domain.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.certificates[cert.ID]; exists {
		return errs.ErrConflict
	}
	r.s.certificates[cert.ID] = *cert
	return nil
}

func (r certificateRepo) ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) ([]*domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Certificate
	for _, c := range r.s.certificates {
		if c.OwnerID == entityID && c.TaxYear == year {
			cp := c
			out = append(out, &cp)
		}
	}
	sortByID(out, func(c *domain.Certificate) uuid.UUID { return c.ID })
	return out, nil
}

// ---- helpers ----

// sortByID keeps list output deterministic across runs.
func sortByID[T any](items []*T, id func(*T) uuid.UUID) {
	slices.SortFunc(items, func(a, b *T) int {
		ai, bi := id(a), id(b)
		return slices.Compare(ai[:], bi[:])
	})
}

func cloneAsset(a domain.Asset) domain.Asset {
	a.OwnershipShares = slices.Clone(a.OwnershipShares)
	a.Balances = slices.Clone(a.Balances)
	a.StockBalances = slices.Clone(a.StockBalances)
	a.PropertyExpense = slices.Clone(a.PropertyExpense)
	a.Valuations = slices.Clone(a.Valuations)
	a.JewelleryTxns = slices.Clone(a.JewelleryTxns)
	if a.Disposed != nil {
		d := *a.Disposed
		a.Disposed = &d
	}
	if a.Closed != nil {
		c := *a.Closed
		a.Closed = &c
	}
	return a
}

func cloneLiability(l domain.Liability) domain.Liability {
	l.OwnershipShares = slices.Clone(l.OwnershipShares)
	l.Payments = slices.Clone(l.Payments)
	return l
}

func cloneIncome(i domain.Income) domain.Income {
	if i.Employment != nil {
		e := *i.Employment
		i.Employment = &e
	}
	if i.Business != nil {
		b := *i.Business
		i.Business = &b
	}
	return i
}
