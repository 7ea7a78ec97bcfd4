package dto

// Thin CRUD payloads for the catalog directories (categorias, proveedores,
// clientes). These screens are glue around the inventory engine.

type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre" validate:"required"`
	Descripcion *string `json:"descripcion"`
}

type CategoriaResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion,omitempty"`
	Activo      bool    `json:"activo"`
}

type CrearProveedorRequest struct {
	Nombre          string  `json:"nombre" validate:"required"`
	TipoDocumento   *string `json:"tipo_documento"`
	NumeroDocumento *string `json:"numero_documento"`
	Contacto        *string `json:"contacto"`
	Telefono        *string `json:"telefono"`
	Correo          *string `json:"correo" validate:"omitempty,email"`
	Direccion       *string `json:"direccion"`
}

type ProveedorResponse struct {
	ID              string  `json:"id"`
	Nombre          string  `json:"nombre"`
	TipoDocumento   *string `json:"tipo_documento,omitempty"`
	NumeroDocumento *string `json:"numero_documento,omitempty"`
	Contacto        *string `json:"contacto,omitempty"`
	Telefono        *string `json:"telefono,omitempty"`
	Correo          *string `json:"correo,omitempty"`
	Direccion       *string `json:"direccion,omitempty"`
	Activo          bool    `json:"activo"`
}

type CrearClienteRequest struct {
	Nombre          string  `json:"nombre" validate:"required"`
	TipoDocumento   *string `json:"tipo_documento"`
	NumeroDocumento *string `json:"numero_documento"`
	Telefono        *string `json:"telefono"`
	Correo          *string `json:"correo" validate:"omitempty,email"`
	Direccion       *string `json:"direccion"`
}

type ClienteResponse struct {
	ID              string  `json:"id"`
	Nombre          string  `json:"nombre"`
	TipoDocumento   *string `json:"tipo_documento,omitempty"`
	NumeroDocumento *string `json:"numero_documento,omitempty"`
	Telefono        *string `json:"telefono,omitempty"`
	Correo          *string `json:"correo,omitempty"`
	Direccion       *string `json:"direccion,omitempty"`
	Activo          bool    `json:"activo"`
}
