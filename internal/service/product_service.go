package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stolarpos/internal/dto"
	"stolarpos/internal/model"
	"stolarpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateBarcode = errors.New("a product with this barcode already exists")
)

// ProductService manages the catalogue the ingestion endpoint resolves barcodes against.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Movements(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.StockMovementResponse, int64, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
	cache     productCache
}

func NewProductService(repo repository.ProductRepository, movements repository.StockMovementRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, movements: movements, cache: productCache{rdb: rdb}}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	barcode := strings.TrimSpace(req.Barcode)
	if _, err := s.repo.FindByBarcode(ctx, barcode); err == nil {
		return nil, ErrDuplicateBarcode
	}

	p := &model.Product{
		Barcode:           barcode,
		Name:              req.Name,
		Category:          req.Category,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: 5,
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBarcode
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.cache.invalidate(ctx, p.Barcode)
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	if cached, ok := s.cache.get(ctx, barcode); ok {
		return cached, nil
	}
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	resp := productToResponse(p)
	s.cache.set(resp)
	return resp, nil
}

// AdjustStock applies a manual delta under a row lock. The result is floored at
// zero like every other stock change; the movement records what was asked for.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	var updated *model.Product
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		before := p.StockQuantity
		after := ClampedStock(before, req.Delta)
		if err := s.repo.SetStockTx(tx, p.ID, after); err != nil {
			return err
		}
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   p.ID,
			Kind:        model.MovementAdjustment,
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  after,
			Reason:      req.Reason,
		}); err != nil {
			return err
		}
		p.StockQuantity = after
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx, updated.Barcode)
	log.Info().
		Str("barcode", updated.Barcode).
		Int("delta", req.Delta).
		Int("stock", updated.StockQuantity).
		Msg("stock adjusted")
	return productToResponse(updated), nil
}

func (s *productService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *productService) Movements(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.StockMovementResponse, int64, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}
	movements, total, err := s.movements.List(ctx, repository.StockMovementFilter{ProductID: &id, Page: page, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		r := dto.StockMovementResponse{
			ID:          m.ID.String(),
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.SaleID != nil {
			sid := m.SaleID.String()
			r.SaleID = &sid
		}
		out = append(out, r)
	}
	return out, total, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                p.ID.String(),
		Barcode:           p.Barcode,
		Name:              p.Name,
		Category:          p.Category,
		Price:             p.Price,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
	}
}
