package service

import (
	"context"
	"errors"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/model"
	"frhema/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectorioService groups the plain CRUD of categorias, proveedores y
// clientes — glue screens around the inventory engine.
type DirectorioService interface {
	CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
	DesactivarCategoria(ctx context.Context, id uuid.UUID) error

	CrearProveedor(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error)
	DesactivarProveedor(ctx context.Context, id uuid.UUID) error

	CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ListarClientes(ctx context.Context) ([]dto.ClienteResponse, error)
	DesactivarCliente(ctx context.Context, id uuid.UUID) error
}

type directorioService struct {
	categoriaRepo repository.CategoriaRepository
	proveedorRepo repository.ProveedorRepository
	clienteRepo   repository.ClienteRepository
}

func NewDirectorioService(
	categoriaRepo repository.CategoriaRepository,
	proveedorRepo repository.ProveedorRepository,
	clienteRepo repository.ClienteRepository,
) DirectorioService {
	return &directorioService{
		categoriaRepo: categoriaRepo,
		proveedorRepo: proveedorRepo,
		clienteRepo:   clienteRepo,
	}
}

func (s *directorioService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	c := &model.Categoria{Nombre: req.Nombre, Descripcion: req.Descripcion, Activo: true}
	if err := s.categoriaRepo.Create(ctx, c); err != nil {
		return nil, apierror.NewPersistence("crear categoria", err)
	}
	return categoriaToResponse(c), nil
}

func (s *directorioService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.categoriaRepo.List(ctx)
	if err != nil {
		return nil, apierror.NewPersistence("listar categorias", err)
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, *categoriaToResponse(&categorias[i]))
	}
	return out, nil
}

func (s *directorioService) DesactivarCategoria(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoriaRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NewNotFound("categoria", id.String())
		}
		return apierror.NewPersistence("buscar categoria", err)
	}
	return s.categoriaRepo.SetActivo(ctx, id, false)
}

func (s *directorioService) CrearProveedor(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		Nombre:          req.Nombre,
		TipoDocumento:   req.TipoDocumento,
		NumeroDocumento: req.NumeroDocumento,
		Contacto:        req.Contacto,
		Telefono:        req.Telefono,
		Correo:          req.Correo,
		Direccion:       req.Direccion,
		Activo:          true,
	}
	if err := s.proveedorRepo.Create(ctx, p); err != nil {
		return nil, apierror.NewPersistence("crear proveedor", err)
	}
	return proveedorToResponse(p), nil
}

func (s *directorioService) ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.proveedorRepo.List(ctx, false)
	if err != nil {
		return nil, apierror.NewPersistence("listar proveedores", err)
	}
	out := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		out = append(out, *proveedorToResponse(&proveedores[i]))
	}
	return out, nil
}

func (s *directorioService) DesactivarProveedor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.proveedorRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NewNotFound("proveedor", id.String())
		}
		return apierror.NewPersistence("buscar proveedor", err)
	}
	return s.proveedorRepo.SetActivo(ctx, id, false)
}

func (s *directorioService) CrearCliente(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:          req.Nombre,
		TipoDocumento:   req.TipoDocumento,
		NumeroDocumento: req.NumeroDocumento,
		Telefono:        req.Telefono,
		Correo:          req.Correo,
		Direccion:       req.Direccion,
		Activo:          true,
	}
	if err := s.clienteRepo.Create(ctx, c); err != nil {
		return nil, apierror.NewPersistence("crear cliente", err)
	}
	return clienteToResponse(c), nil
}

func (s *directorioService) ListarClientes(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.clienteRepo.List(ctx)
	if err != nil {
		return nil, apierror.NewPersistence("listar clientes", err)
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *directorioService) DesactivarCliente(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clienteRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NewNotFound("cliente", id.String())
		}
		return apierror.NewPersistence("buscar cliente", err)
	}
	return s.clienteRepo.SetActivo(ctx, id, false)
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:              p.ID.String(),
		Nombre:          p.Nombre,
		TipoDocumento:   p.TipoDocumento,
		NumeroDocumento: p.NumeroDocumento,
		Contacto:        p.Contacto,
		Telefono:        p.Telefono,
		Correo:          p.Correo,
		Direccion:       p.Direccion,
		Activo:          p.Activo,
	}
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:              c.ID.String(),
		Nombre:          c.Nombre,
		TipoDocumento:   c.TipoDocumento,
		NumeroDocumento: c.NumeroDocumento,
		Telefono:        c.Telefono,
		Correo:          c.Correo,
		Direccion:       c.Direccion,
		Activo:          c.Activo,
	}
}
