package service

import (
	"context"
	"errors"
	"time"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/model"
	"frhema/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)

	// SetActivo is the manual override of the derived flag. It survives only
	// until the next stock mutation, which re-derives activo from stock.
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error

	// Eliminar removes a product only when no historical purchase or sale
	// line references it; otherwise it fails and the caller should
	// deactivate instead.
	Eliminar(ctx context.Context, id uuid.UUID) error

	ListarStockCritico(ctx context.Context, limite *int) ([]dto.ProductoResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.StockInicial < 0 {
		return nil, apierror.NewValidation("el stock inicial no puede ser negativo")
	}
	if req.PrecioUnitario.IsNegative() || req.PrecioCompra.IsNegative() {
		return nil, apierror.NewValidation("los precios no pueden ser negativos")
	}

	unidad := req.UnidadMedida
	if unidad == "" {
		unidad = "unidad"
	}
	p := &model.Producto{
		Codigo:         req.Codigo,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		UnidadMedida:   unidad,
		StockActual:    req.StockInicial,
		StockMinimo:    req.StockMinimo,
		PrecioUnitario: req.PrecioUnitario,
		PrecioMayor:    req.PrecioMayor,
		PrecioCompra:   req.PrecioCompra,
		// Initial state is derived from initial stock.
		Activo: req.StockInicial > 0,
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.NewValidation("categoria_id invalido")
		}
		p.CategoriaID = &cid
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.NewValidation("proveedor_id invalido")
		}
		p.ProveedorID = &pid
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.NewPersistence("crear producto", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("producto", codigo)
		}
		return nil, apierror.NewPersistence("buscar producto", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.NewPersistence("listar productos", err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.UnidadMedida != nil {
		p.UnidadMedida = *req.UnidadMedida
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.PrecioUnitario != nil {
		if req.PrecioUnitario.IsNegative() {
			return nil, apierror.NewValidation("el precio unitario no puede ser negativo")
		}
		p.PrecioUnitario = *req.PrecioUnitario
	}
	if req.PrecioMayor != nil {
		p.PrecioMayor = req.PrecioMayor
	}
	if req.PrecioCompra != nil {
		if req.PrecioCompra.IsNegative() {
			return nil, apierror.NewValidation("el precio de compra no puede ser negativo")
		}
		p.PrecioCompra = *req.PrecioCompra
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.NewValidation("categoria_id invalido")
		}
		p.CategoriaID = &cid
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.NewValidation("proveedor_id invalido")
		}
		p.ProveedorID = &pid
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.NewPersistence("actualizar producto", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return apierror.NewPersistence("actualizar activo", err)
	}
	return nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	referenciado, err := s.repo.TieneReferencias(ctx, id)
	if err != nil {
		return apierror.NewPersistence("verificar referencias", err)
	}
	if referenciado {
		return apierror.NewValidation(repository.ErrProductoReferenciado.Error())
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.NewPersistence("eliminar producto", err)
	}
	return nil
}

func (s *productoService) ListarStockCritico(ctx context.Context, limite *int) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListStockCritico(ctx, limite)
	if err != nil {
		return nil, apierror.NewPersistence("listar stock critico", err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return items, nil
}

func (s *productoService) find(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("producto", id.String())
		}
		return nil, apierror.NewPersistence("buscar producto", err)
	}
	return p, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:             p.ID.String(),
		Codigo:         p.Codigo,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		UnidadMedida:   p.UnidadMedida,
		StockActual:    p.StockActual,
		StockMinimo:    p.StockMinimo,
		PrecioUnitario: p.PrecioUnitario,
		PrecioMayor:    p.PrecioMayor,
		PrecioCompra:   p.PrecioCompra,
		Activo:         p.Activo,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.CategoriaID != nil {
		v := p.CategoriaID.String()
		resp.CategoriaID = &v
	}
	if p.ProveedorID != nil {
		v := p.ProveedorID.String()
		resp.ProveedorID = &v
	}
	return resp
}
