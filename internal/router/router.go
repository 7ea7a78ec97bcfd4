package router

import (
	"time"

	"frhema/internal/config"
	"frhema/internal/handler"
	"frhema/internal/middleware"
	"frhema/internal/repository"
	"frhema/internal/service"
	"frhema/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	// Worker dispatcher — stock events fan out through Redis after commit
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo, dispatcher)
	compraSvc := service.NewCompraService(compraRepo, proveedorRepo, inventarioSvc, dispatcher)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, inventarioSvc, dispatcher)
	costoSvc := service.NewCostoService(compraRepo, productoRepo)
	directorioSvc := service.NewDirectorioService(categoriaRepo, proveedorRepo, clienteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, costoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	directorioH := handler.NewDirectorioHandler(directorioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, almacenero, administrador — declared per-endpoint
		lectura := middleware.RequireRole("vendedor", "almacenero", "administrador")
		almacen := middleware.RequireRole("almacenero", "administrador")
		admin := middleware.RequireRole("administrador")

		v1.GET("/productos", lectura, productosH.Listar)
		v1.GET("/productos/stock-critico", lectura, productosH.StockCritico)
		v1.GET("/productos/codigo/:codigo", lectura, productosH.ObtenerPorCodigo)
		v1.GET("/productos/:id", lectura, productosH.Obtener)
		v1.GET("/productos/:id/kardex", lectura, inventarioH.Kardex)
		v1.GET("/productos/:id/resumen-costos", almacen, productosH.ResumenCostos)
		prods := v1.Group("/productos", almacen)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.PATCH("/:id/activo", productosH.SetActivo)
		}
		v1.DELETE("/productos/:id", admin, productosH.Eliminar)

		inv := v1.Group("/inventario", almacen)
		{
			inv.POST("/movimientos", inventarioH.RegistrarMovimiento)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.GET("/kardex/:producto_id", inventarioH.Kardex)
		}

		compras := v1.Group("/compras", almacen)
		{
			compras.POST("", comprasH.Registrar)
			compras.GET("", comprasH.Listar)
			compras.GET("/:id", comprasH.Obtener)
		}

		ventas := v1.Group("/ventas", middleware.RequireRole("vendedor", "administrador"))
		{
			ventas.POST("", ventasH.Registrar)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/:id", ventasH.Obtener)
		}

		// Directorios — lectura para todos los roles, escritura para almacen
		v1.GET("/categorias", lectura, directorioH.ListarCategorias)
		v1.GET("/proveedores", lectura, directorioH.ListarProveedores)
		v1.GET("/clientes", lectura, directorioH.ListarClientes)
		v1.POST("/categorias", almacen, directorioH.CrearCategoria)
		v1.DELETE("/categorias/:id", almacen, directorioH.DesactivarCategoria)
		v1.POST("/proveedores", almacen, directorioH.CrearProveedor)
		v1.DELETE("/proveedores/:id", almacen, directorioH.DesactivarProveedor)
		v1.POST("/clientes", lectura, directorioH.CrearCliente)
		v1.DELETE("/clientes/:id", almacen, directorioH.DesactivarCliente)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	return r
}
