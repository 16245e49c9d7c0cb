package repository

import (
	"context"

	"andespos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventarioRepository interface {
	FindStock(ctx context.Context, productoID, almacenID uuid.UUID) (*model.Inventario, error)
	// FindStockTx reads the stock row inside a transaction with a row lock,
	// so the before/after quantities recorded in the kardex are consistent
	// with the decrement that follows.
	FindStockTx(tx *gorm.DB, productoID, almacenID uuid.UUID) (*model.Inventario, error)
	// DescontarTx performs the conditional decrement. The WHERE guard
	// `stock >= cantidad` is what keeps stock non-negative under concurrency;
	// zero rows affected means insufficient stock (or a missing row — callers
	// distinguish via FindStockTx).
	DescontarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error)
	// RestaurarTx increments stock, used by sale voids and entry notes.
	RestaurarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error)
	CreateTx(tx *gorm.DB, inv *model.Inventario) error
	ListByAlmacen(ctx context.Context, almacenID uuid.UUID) ([]model.Inventario, error)
	// TotalStock sums a product's stock across every warehouse.
	TotalStock(ctx context.Context, productoID uuid.UUID) (int, error)
}

type inventarioRepo struct{ db *gorm.DB }

func NewInventarioRepository(db *gorm.DB) InventarioRepository {
	return &inventarioRepo{db: db}
}

func (r *inventarioRepo) FindStock(ctx context.Context, productoID, almacenID uuid.UUID) (*model.Inventario, error) {
	var inv model.Inventario
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND almacen_id = ?", productoID, almacenID).
		First(&inv).Error
	return &inv, err
}

func (r *inventarioRepo) FindStockTx(tx *gorm.DB, productoID, almacenID uuid.UUID) (*model.Inventario, error) {
	var inv model.Inventario
	err := tx.Raw(
		"SELECT * FROM inventario WHERE producto_id = ? AND almacen_id = ? FOR UPDATE",
		productoID, almacenID,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (r *inventarioRepo) DescontarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error) {
	res := tx.Model(&model.Inventario{}).
		Where("producto_id = ? AND almacen_id = ? AND stock >= ?", productoID, almacenID, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	return res.RowsAffected, res.Error
}

func (r *inventarioRepo) RestaurarTx(tx *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error) {
	res := tx.Model(&model.Inventario{}).
		Where("producto_id = ? AND almacen_id = ?", productoID, almacenID).
		Update("stock", gorm.Expr("stock + ?", cantidad))
	return res.RowsAffected, res.Error
}

func (r *inventarioRepo) CreateTx(tx *gorm.DB, inv *model.Inventario) error {
	return tx.Create(inv).Error
}

func (r *inventarioRepo) TotalStock(ctx context.Context, productoID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(stock), 0) FROM inventario WHERE producto_id = ?", productoID).
		Scan(&total).Error
	return total, err
}

func (r *inventarioRepo) ListByAlmacen(ctx context.Context, almacenID uuid.UUID) ([]model.Inventario, error) {
	var invs []model.Inventario
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("almacen_id = ?", almacenID).
		Find(&invs).Error
	return invs, err
}
