// Package repotest provides in-memory implementations of the repository
// interfaces for service, handler and client tests. They accept a nil *gorm.DB
// wherever a transaction is expected, so services run their transactional
// paths inline. Not safe for concurrent use.
package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	"stolarpos/internal/dto"
	"stolarpos/internal/model"
	"stolarpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Sales ─────────────────────────────────────────────────────────────────────

type SaleRepo struct {
	Sales      map[uuid.UUID]*model.Sale
	offlineIdx map[string]*model.Sale
	clock      func() time.Time
}

func NewSaleRepo() *SaleRepo {
	return &SaleRepo{
		Sales:      make(map[uuid.UUID]*model.Sale),
		offlineIdx: make(map[string]*model.Sale),
		clock:      time.Now,
	}
}

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.OfflineID != nil {
		if _, dup := r.offlineIdx[*s.OfflineID]; dup {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.clock()
	}
	r.Sales[s.ID] = s
	if s.OfflineID != nil {
		r.offlineIdx[*s.OfflineID] = s
	}
	return nil
}

func (r *SaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.Sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *SaleRepo) FindByOfflineID(_ context.Context, offlineID string) (*model.Sale, error) {
	s, ok := r.offlineIdx[offlineID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

// sorted returns all sales newest first.
func (r *SaleRepo) sorted() []model.Sale {
	out := make([]model.Sale, 0, len(r.Sales))
	for _, s := range r.Sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *SaleRepo) List(_ context.Context) ([]model.Sale, error) { return r.sorted(), nil }

func (r *SaleRepo) ListRecent(_ context.Context, offset, limit int) ([]model.Sale, error) {
	all := r.sorted()
	if offset >= len(all) {
		return []model.Sale{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *SaleRepo) ListBetween(_ context.Context, from, to time.Time, status string) ([]model.Sale, error) {
	var out []model.Sale
	all := r.sorted()
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if s.Status == status && !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SaleRepo) TransitionStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) (bool, error) {
	s, ok := r.Sales[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (r *SaleRepo) DB() *gorm.DB { return nil }

// ── Products ──────────────────────────────────────────────────────────────────

type ProductRepo struct {
	Products map[uuid.UUID]*model.Product
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{Products: make(map[uuid.UUID]*model.Product)}
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

// Seed adds a product with the given barcode and stock and returns it.
func (r *ProductRepo) Seed(barcode, name string, stock int) *model.Product {
	p := &model.Product{
		ID:                uuid.New(),
		Barcode:           barcode,
		Name:              name,
		Category:          "general",
		StockQuantity:     stock,
		LowStockThreshold: 5,
	}
	r.Products[p.ID] = p
	return p
}

// Stock returns the current stock for barcode, or -1 when unknown.
func (r *ProductRepo) Stock(barcode string) int {
	for _, p := range r.Products {
		if p.Barcode == barcode {
			return p.StockQuantity
		}
	}
	return -1
}

func (r *ProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.Products {
		if existing.Barcode == p.Barcode {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.Products[p.ID] = p
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.Products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.Products {
		if p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var matched []model.Product
	for _, p := range r.Products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []model.Product{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *ProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.Products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockQuantity < out[j].StockQuantity })
	return out, nil
}

func (r *ProductRepo) FindByBarcodeForUpdateTx(_ *gorm.DB, barcode string) (*model.Product, error) {
	return r.FindByBarcode(context.Background(), barcode)
}

func (r *ProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *ProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	p, ok := r.Products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity = stock
	return nil
}

func (r *ProductRepo) DB() *gorm.DB { return nil }

// ── Stock movements ───────────────────────────────────────────────────────────

type MovementRepo struct {
	Movements []model.StockMovement
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.Movements = append(r.Movements, *m)
	return nil
}

func (r *MovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for i := len(r.Movements) - 1; i >= 0; i-- {
		m := r.Movements[i]
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}
