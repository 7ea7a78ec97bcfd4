package infra

import (
	"frhema/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Callers run
// RunMigrations before serving.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
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

	return db, nil
}

// RunMigrations creates or updates the schema. Runs once at startup, before
// the server accepts requests; the integration tests run it against their
// throwaway containers.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Categoria{},
		&model.Proveedor{},
		&model.Cliente{},
		&model.Usuario{},
		&model.Producto{},
		&model.Compra{},
		&model.DetalleCompra{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.MovimientoStock{},
	)
}
