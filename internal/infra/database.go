package infra

import (
	"fmt"

	"andespos/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection over go-sql-driver/mysql and
// runs AutoMigrate for the full schema. The DSN must carry parseTime=true
// so DATETIME columns scan into time.Time.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Empresa{},
		&model.Almacen{},
		&model.Sucursal{},
		&model.Usuario{},
		&model.Producto{},
		&model.ProductoVariante{},
		&model.Inventario{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.Proveedor{},
		&model.Comprobante{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.VentaPago{},
		&model.NotaAlmacen{},
		&model.DetalleNota{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches creates the indexes AutoMigrate cannot express. MySQL
// has no CREATE INDEX IF NOT EXISTS, so each patch checks the catalog first.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ index, sql string }{
		// retry cron scans pendientes by next_retry_at
		{"idx_comprobantes_pending_retry",
			"CREATE INDEX idx_comprobantes_pending_retry ON comprobantes (estado, next_retry_at)"},
		// kardex queries filter by product+warehouse and order by time
		{"idx_movimientos_kardex",
			"CREATE INDEX idx_movimientos_kardex ON movimientos_stock (producto_id, almacen_id, created_at)"},
	}

	for _, p := range patches {
		var n int64
		err := db.Raw(
			"SELECT COUNT(1) FROM information_schema.statistics WHERE table_schema = DATABASE() AND index_name = ?",
			p.index,
		).Scan(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %s: %w", p.index, err)
		}
	}
	return nil
}
