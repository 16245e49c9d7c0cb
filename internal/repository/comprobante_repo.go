package repository

import (
	"context"
	"time"

	"andespos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComprobanteRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error
	// FindUltimoTx returns the highest-numbered voucher for a document type,
	// locking the row (SELECT … FOR UPDATE) so that two concurrent sales
	// sequencing the same type serialize on it. Returns gorm.ErrRecordNotFound
	// when no voucher of that type exists yet.
	FindUltimoTx(ctx context.Context, tx *gorm.DB, tipo string) (*model.Comprobante, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error)
	Update(ctx context.Context, c *model.Comprobante) error
	// UpdateTx saves the voucher inside the caller's transaction, for state
	// changes that must commit together with their owning operation.
	UpdateTx(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error
	ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.Comprobante, error)
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *comprobanteRepo) FindUltimoTx(ctx context.Context, tx *gorm.DB, tipo string) (*model.Comprobante, error) {
	var c model.Comprobante
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tipo = ?", tipo).
		Order("numero DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comprobanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *comprobanteRepo) Update(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *comprobanteRepo) UpdateTx(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error {
	return tx.WithContext(ctx).Save(c).Error
}

func (r *comprobanteRepo) ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.Comprobante, error) {
	var comprobantes []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado IN ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?",
			[]string{model.SunatPendiente, model.CompBajaSolicitada}, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&comprobantes).Error
	return comprobantes, err
}
