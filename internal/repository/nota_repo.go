package repository

import (
	"context"

	"andespos/internal/dto"
	"andespos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, n *model.NotaAlmacen) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotaAlmacen, error)
	AnularTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter dto.NotaFilter) ([]model.NotaAlmacen, int64, error)
	DB() *gorm.DB
}

type notaRepo struct{ db *gorm.DB }

func NewNotaRepository(db *gorm.DB) NotaRepository { return &notaRepo{db: db} }

func (r *notaRepo) DB() *gorm.DB { return r.db }

func (r *notaRepo) CreateTx(ctx context.Context, tx *gorm.DB, n *model.NotaAlmacen) error {
	return tx.WithContext(ctx).Create(n).Error
}

func (r *notaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NotaAlmacen, error) {
	var n model.NotaAlmacen
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		Preload("Almacen").
		Preload("Proveedor").
		First(&n, "id = ?", id).Error
	return &n, err
}

func (r *notaRepo) AnularTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.NotaAlmacen{}).Where("id = ?", id).
		Update("estado", model.NotaAnulada).Error
}

func (r *notaRepo) List(ctx context.Context, filter dto.NotaFilter) ([]model.NotaAlmacen, int64, error) {
	var notas []model.NotaAlmacen
	var total int64

	q := r.db.WithContext(ctx).Model(&model.NotaAlmacen{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.AlmacenID != "" {
		q = q.Where("almacen_id = ?", filter.AlmacenID)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha) = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles.Producto").
		Preload("Proveedor").
		Order("fecha DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&notas).Error
	return notas, total, err
}
