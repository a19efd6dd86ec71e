package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stolarpos/internal/dto"
	"stolarpos/internal/infra"
	"stolarpos/internal/model"
	"stolarpos/internal/repository"
	"stolarpos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSaleNotFound    = errors.New("sale not found")
	ErrAlreadyRefunded = errors.New("sale is already refunded")
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
)

const summaryDateLayout = "2006-01-02"

type SaleService interface {
	// RecordSale stores a sale and decrements stock for every item whose barcode
	// matches a product. duplicate is true when the sale's offlineId had
	// already been ingested; the stored sale is returned and nothing changes.
	RecordSale(ctx context.Context, req dto.CreateSaleRequest) (resp *dto.SaleResponse, duplicate bool, err error)
	ListSales(ctx context.Context) ([]dto.SaleResponse, error)
	RecentSales(ctx context.Context, page, limit int) ([]dto.RecentSale, error)
	DailySummary(ctx context.Context, date string) (*dto.SalesSummary, error)
	FindSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	RefundSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	// ReceiptPDF renders the sale's receipt and returns the file path.
	ReceiptPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type saleService struct {
	repo        repository.SaleRepository
	products    repository.ProductRepository
	movements   repository.StockMovementRepository
	cache       productCache
	dispatcher  *worker.Dispatcher
	shopName    string
	storagePath string
	now         func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	shopName, storagePath string,
) SaleService {
	return &saleService{
		repo:        repo,
		products:    products,
		movements:   movements,
		cache:       productCache{rdb: rdb},
		dispatcher:  dispatcher,
		shopName:    shopName,
		storagePath: storagePath,
		now:         time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RecordSale ────────────────────────────────────────────────────────────────
// One transaction:
//   1. insert sale + items
//   2. for each item with a barcode: lock the product row, clamp-decrement
//      stock, record a stock movement (unknown barcodes are skipped)
// After commit: drop cached lookups for touched barcodes, queue the receipt.

func (s *saleService) RecordSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, bool, error) {
	offlineID := ""
	if req.OfflineID != nil {
		offlineID = strings.TrimSpace(*req.OfflineID)
	}
	if offlineID != "" {
		if existing, err := s.repo.FindByOfflineID(ctx, offlineID); err == nil {
			log.Info().Str("offline_id", offlineID).Str("sale_id", existing.ID.String()).Msg("sale already ingested")
			return saleToResponse(existing), true, nil
		}
	}

	sale := s.buildSale(req, offlineID)
	s.checkTotal(sale)

	var touched []string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		touched = touched[:0]
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if item.Barcode == "" {
				continue
			}
			ok, err := s.adjustForItem(tx, sale.ID, item.Barcode, -item.Quantity, model.MovementSale)
			if err != nil {
				return fmt.Errorf("decrement stock for %s: %w", item.Barcode, err)
			}
			if ok {
				touched = append(touched, item.Barcode)
			}
		}
		return nil
	})
	if txErr != nil {
		// Two devices replaying the same offline sale concurrently: the loser
		// hits the unique index and answers with the winner's row.
		if offlineID != "" && errors.Is(txErr, gorm.ErrDuplicatedKey) {
			if existing, err := s.repo.FindByOfflineID(ctx, offlineID); err == nil {
				return saleToResponse(existing), true, nil
			}
		}
		return nil, false, txErr
	}

	s.cache.invalidate(ctx, touched...)
	s.enqueueReceipt(ctx, sale)

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("offline_id", offlineID).
		Int("items", len(sale.Items)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale recorded")
	return saleToResponse(sale), false, nil
}

func (s *saleService) buildSale(req dto.CreateSaleRequest, offlineID string) *model.Sale {
	sale := &model.Sale{
		ID:            uuid.New(),
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Status:        model.SaleStatusCompleted,
		CustomerEmail: req.CustomerEmail,
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = model.DefaultPaymentMethod
	}
	if req.Date != nil && !req.Date.IsZero() {
		sale.Date = *req.Date
	} else {
		sale.Date = s.now()
	}
	if offlineID != "" {
		sale.OfflineID = &offlineID
	}
	if req.CreatedAt != nil && *req.CreatedAt != "" {
		sale.ClientCreatedAt = req.CreatedAt
	}
	for _, it := range req.Items {
		sale.Items = append(sale.Items, model.SaleItem{
			ID:         uuid.New(),
			SaleID:     sale.ID,
			ProductRef: it.ID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
			Barcode:    strings.TrimSpace(it.Barcode),
		})
	}
	return sale
}

// checkTotal logs when the declared total disagrees with the item lines.
// The declared total is what gets stored.
func (s *saleService) checkTotal(sale *model.Sale) {
	computed := decimal.Zero
	for _, it := range sale.Items {
		computed = computed.Add(it.Subtotal())
	}
	if !computed.Equal(sale.Total) {
		log.Warn().
			Str("sale_id", sale.ID.String()).
			Str("declared", sale.Total.StringFixed(2)).
			Str("computed", computed.StringFixed(2)).
			Msg("sale total does not match item lines")
	}
}

// adjustForItem applies delta to the product with the given barcode under a
// row lock and records the movement. It reports false when no product matches.
func (s *saleService) adjustForItem(tx *gorm.DB, saleID uuid.UUID, barcode string, delta int, kind string) (bool, error) {
	p, err := s.products.FindByBarcodeForUpdateTx(tx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().Str("barcode", barcode).Str("sale_id", saleID.String()).Msg("no product for barcode, stock untouched")
			return false, nil
		}
		return false, err
	}
	before := p.StockQuantity
	after := ClampedStock(before, delta)
	if err := s.products.SetStockTx(tx, p.ID, after); err != nil {
		return false, err
	}
	ref := saleID
	if err := s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   p.ID,
		Kind:        kind,
		Quantity:    delta,
		StockBefore: before,
		StockAfter:  after,
		Reason:      kind + " " + saleID.String(),
		SaleID:      &ref,
	}); err != nil {
		return false, err
	}
	if kind == model.MovementSale && before+delta < 0 {
		log.Warn().Str("barcode", barcode).Int("stock", before).Int("sold", -delta).Msg("sold more than stock on hand, clamped to 0")
	}
	return true, nil
}

func (s *saleService) enqueueReceipt(ctx context.Context, sale *model.Sale) {
	if s.dispatcher == nil || sale.CustomerEmail == nil || *sale.CustomerEmail == "" {
		return
	}
	err := s.dispatcher.EnqueueReceipt(context.WithoutCancel(ctx), worker.ReceiptJobPayload{
		SaleID:        sale.ID.String(),
		CustomerEmail: *sale.CustomerEmail,
	})
	if err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("could not enqueue receipt job")
	}
}

// ── Reporting ─────────────────────────────────────────────────────────────────

func (s *saleService) ListSales(ctx context.Context) ([]dto.SaleResponse, error) {
	sales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *saleToResponse(&sales[i]))
	}
	return out, nil
}

func (s *saleService) RecentSales(ctx context.Context, page, limit int) ([]dto.RecentSale, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	sales, err := s.repo.ListRecent(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecentSale, 0, len(sales))
	for i := range sales {
		sale := &sales[i]
		out = append(out, dto.RecentSale{
			ID:     sale.ID.String(),
			Time:   sale.Date.Local().Format("15:04"),
			Total:  sale.Total,
			Items:  sale.ItemCount(),
			Amount: sale.Total.StringFixed(2),
			Status: sale.Status,
		})
	}
	return out, nil
}

// DailySummary covers the whole calendar day in server-local time and only
// counts completed sales.
func (s *saleService) DailySummary(ctx context.Context, date string) (*dto.SalesSummary, error) {
	from, err := time.ParseInLocation(summaryDateLayout, date, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to := from.AddDate(0, 0, 1)

	sales, err := s.repo.ListBetween(ctx, from, to, model.SaleStatusCompleted)
	if err != nil {
		return nil, err
	}
	summary := &dto.SalesSummary{
		TotalSales:   decimal.Zero,
		Transactions: make([]dto.SaleResponse, 0, len(sales)),
	}
	for i := range sales {
		summary.TotalSales = summary.TotalSales.Add(sales[i].Total)
		summary.Transactions = append(summary.Transactions, *saleToResponse(&sales[i]))
	}
	summary.NumberOfTransactions = len(sales)
	return summary, nil
}

func (s *saleService) FindSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) findSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// ── Refund ────────────────────────────────────────────────────────────────────

// RefundSale marks a completed sale refunded and puts its units back on the shelf.
func (s *saleService) RefundSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status == model.SaleStatusRefunded {
		return nil, ErrAlreadyRefunded
	}

	var touched []string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		touched = touched[:0]
		ok, err := s.repo.TransitionStatusTx(tx, sale.ID, model.SaleStatusCompleted, model.SaleStatusRefunded)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyRefunded
		}
		for _, item := range sale.Items {
			if item.Barcode == "" {
				continue
			}
			restored, err := s.adjustForItem(tx, sale.ID, item.Barcode, item.Quantity, model.MovementRefund)
			if err != nil {
				return fmt.Errorf("restore stock for %s: %w", item.Barcode, err)
			}
			if restored {
				touched = append(touched, item.Barcode)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.cache.invalidate(ctx, touched...)
	sale.Status = model.SaleStatusRefunded
	log.Info().Str("sale_id", sale.ID.String()).Msg("sale refunded")
	return saleToResponse(sale), nil
}

func (s *saleService) ReceiptPDF(ctx context.Context, id uuid.UUID) (string, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return "", err
	}
	return infra.GenerateReceiptPDF(sale, s.shopName, s.storagePath)
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		Items:         make([]dto.SaleItemResponse, 0, len(sale.Items)),
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Date:          sale.Date,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
	}
	for _, it := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:       it.ProductRef,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Barcode:  it.Barcode,
		})
	}
	return resp
}
