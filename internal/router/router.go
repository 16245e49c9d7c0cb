package router

import (
	"time"

	"andespos/internal/config"
	"andespos/internal/handler"
	"andespos/internal/infra"
	"andespos/internal/middleware"
	"andespos/internal/repository"
	"andespos/internal/service"
	"andespos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, sunatCB *infra.CircuitBreaker) *gin.Engine {
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
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	notaRepo := repository.NewNotaRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	inventarioRepo := repository.NewInventarioRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb)
	precioSvc := service.NewPrecioService(productoRepo, inventarioRepo, rdb)
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	inventarioSvc := service.NewInventarioService(inventarioRepo, movimientoRepo, productoRepo)
	comprobanteSvc := service.NewComprobanteService(comprobanteRepo)
	kardexSvc := service.NewKardexService(movimientoRepo, productoRepo)
	notaSvc := service.NewNotaService(notaRepo, inventarioSvc, usuarioRepo, proveedorRepo, productoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, comprobanteSvc, comprobanteRepo, inventarioSvc, usuarioRepo, productoRepo, clienteRepo, dispatcher)
	facturacionSvc := service.NewFacturacionService(comprobanteRepo, ventaRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	preciosH := handler.NewPreciosHandler(precioSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	notasH := handler.NewNotasHandler(notaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	kardexH := handler.NewKardexHandler(kardexSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, sunatCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Price check — no auth, served to in-store verification terminals
	r.GET("/v1/precio/:codigo", preciosH.Consultar)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.ObtenerVenta)
		v1.POST("/ventas/:id/anular", middleware.RequireRole("supervisor", "administrador"), ventasH.AnularVenta)

		v1.GET("/productos", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.ObtenerPorID)
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
		}

		v1.POST("/clientes", middleware.RequireRole("cajero", "supervisor", "administrador"), clientesH.Crear)
		v1.GET("/clientes", middleware.RequireRole("cajero", "supervisor", "administrador"), clientesH.Listar)
		v1.GET("/clientes/:documento", middleware.RequireRole("cajero", "supervisor", "administrador"), clientesH.ObtenerPorDocumento)

		notas := v1.Group("/notas", middleware.RequireRole("supervisor", "administrador"))
		{
			notas.POST("", notasH.Registrar)
			notas.GET("", notasH.Listar)
			notas.GET("/:id", notasH.Obtener)
			notas.POST("/:id/anular", notasH.Anular)
		}

		v1.GET("/inventario/:almacen_id", middleware.RequireRole("supervisor", "administrador"), inventarioH.Listar)
		v1.GET("/kardex", middleware.RequireRole("supervisor", "administrador"), kardexH.Consultar)

		fact := v1.Group("/facturacion", middleware.RequireRole("supervisor", "administrador"))
		{
			fact.GET("/:venta_id", facturacionH.Obtener)
			fact.POST("/reenviar", facturacionH.Reenviar)
		}

		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
