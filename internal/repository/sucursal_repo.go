package repository

import (
	"context"

	"andespos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SucursalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	// FindByUsuario resolves the branch a user is assigned to — the entry
	// point of the branch→warehouse resolution every sale goes through.
	FindByUsuario(ctx context.Context, username string) (*model.Sucursal, error)
	List(ctx context.Context) ([]model.Sucursal, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).Preload("Almacen").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sucursalRepo) FindByUsuario(ctx context.Context, username string) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).
		Joins("JOIN usuarios ON usuarios.sucursal_id = sucursales.id").
		Where("usuarios.username = ? AND usuarios.activo = true", username).
		First(&s).Error
	return &s, err
}

func (r *sucursalRepo) List(ctx context.Context) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).Preload("Almacen").Where("activo = true").Find(&sucursales).Error
	return sucursales, err
}
