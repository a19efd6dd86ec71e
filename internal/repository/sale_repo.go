package repository

import (
	"context"
	"time"

	"stolarpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByOfflineID(ctx context.Context, offlineID string) (*model.Sale, error)
	List(ctx context.Context) ([]model.Sale, error)
	ListRecent(ctx context.Context, offset, limit int) ([]model.Sale, error)
	// ListBetween returns sales with from <= date < to in the given status.
	ListBetween(ctx context.Context, from, to time.Time, status string) ([]model.Sale, error)
	// TransitionStatusTx moves a sale from one status to another and reports
	// whether a row matched; false means the sale was not in status from.
	TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (bool, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) FindByOfflineID(ctx context.Context, offlineID string) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Where("offline_id = ?", offlineID).First(&s).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListRecent(ctx context.Context, offset, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Order("date DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListBetween(ctx context.Context, from, to time.Time, status string) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("date >= ? AND date < ? AND status = ?", from, to, status).
		Order("date ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (bool, error) {
	res := tx.Model(&model.Sale{}).Where("id = ? AND status = ?", id, from).Update("status", to)
	return res.RowsAffected == 1, res.Error
}
