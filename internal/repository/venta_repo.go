package repository

import (
	"context"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	AnularTx(tx *gorm.DB, id uuid.UUID, motivo string) error
	// UpdateEstadoSunat is the reconciliation write: a single idempotent
	// UPDATE of the fiscal-acceptance flag, never touching estado.
	UpdateEstadoSunat(ctx context.Context, id uuid.UUID, estadoSunat string) error
	FindByComprobanteID(ctx context.Context, comprobanteID uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		Preload("Pagos").
		Preload("Comprobante").
		Preload("Cliente").
		Preload("Sucursal").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) FindByComprobanteID(ctx context.Context, comprobanteID uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Preload("Comprobante").
		First(&v, "comprobante_id = ?", comprobanteID).Error
	return &v, err
}

func (r *ventaRepo) AnularTx(tx *gorm.DB, id uuid.UUID, motivo string) error {
	now := time.Now()
	return tx.Model(&model.Venta{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":           model.VentaAnulada,
		"motivo_anulacion": motivo,
		"fecha_anulacion":  now,
	}).Error
}

func (r *ventaRepo) UpdateEstadoSunat(ctx context.Context, id uuid.UUID, estadoSunat string) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ?", id).
		Update("estado_sunat", estadoSunat).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha_emision) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(fecha_emision) = CURDATE()")
	}
	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Detalles.Producto").
		Preload("Pagos").
		Preload("Comprobante").
		Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}
