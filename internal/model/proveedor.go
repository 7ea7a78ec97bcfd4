package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor represents a supplier.
type Proveedor struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string    `gorm:"not null"`
	TipoDocumento   *string   `gorm:"type:varchar(10)"`
	NumeroDocumento *string   `gorm:"uniqueIndex"`
	Contacto        *string
	Telefono        *string
	Correo          *string
	Direccion       *string
	Activo          bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
