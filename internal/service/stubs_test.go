package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. They run without a database: services call
// runTx with a nil DB, which executes the transactional closure directly.

// ── comprobantes ─────────────────────────────────────────────────────────────

type stubComprobanteRepo struct {
	comprobantes map[uuid.UUID]*model.Comprobante
}

func newStubComprobanteRepo() *stubComprobanteRepo {
	return &stubComprobanteRepo{comprobantes: make(map[uuid.UUID]*model.Comprobante)}
}

func (r *stubComprobanteRepo) CreateTx(_ context.Context, _ *gorm.DB, c *model.Comprobante) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.comprobantes[c.ID] = c
	return nil
}

func (r *stubComprobanteRepo) FindUltimoTx(_ context.Context, _ *gorm.DB, tipo string) (*model.Comprobante, error) {
	var all []*model.Comprobante
	for _, c := range r.comprobantes {
		if c.Tipo == tipo {
			all = append(all, c)
		}
	}
	if len(all) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Serie != all[j].Serie {
			return all[i].Serie < all[j].Serie
		}
		return all[i].Correlativo < all[j].Correlativo
	})
	return all[len(all)-1], nil
}

func (r *stubComprobanteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Comprobante, error) {
	c, ok := r.comprobantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubComprobanteRepo) Update(_ context.Context, c *model.Comprobante) error {
	r.comprobantes[c.ID] = c
	return nil
}

func (r *stubComprobanteRepo) UpdateTx(_ context.Context, _ *gorm.DB, c *model.Comprobante) error {
	r.comprobantes[c.ID] = c
	return nil
}

func (r *stubComprobanteRepo) ListPendingRetries(_ context.Context, before time.Time, limit int) ([]model.Comprobante, error) {
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		retriable := c.Estado == model.SunatPendiente || c.Estado == model.CompBajaSolicitada
		if retriable && c.NextRetryAt != nil && c.NextRetryAt.Before(before) {
			out = append(out, *c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ repository.ComprobanteRepository = (*stubComprobanteRepo)(nil)

// ── ventas ───────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) AnularTx(_ *gorm.DB, id uuid.UUID, motivo string) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	v.Estado = model.VentaAnulada
	v.MotivoAnulacion = &motivo
	v.FechaAnulacion = &now
	return nil
}

func (r *stubVentaRepo) UpdateEstadoSunat(_ context.Context, id uuid.UUID, estadoSunat string) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.EstadoSunat = estadoSunat
	return nil
}

func (r *stubVentaRepo) FindByComprobanteID(_ context.Context, comprobanteID uuid.UUID) (*model.Venta, error) {
	for _, v := range r.ventas {
		if v.ComprobanteID == comprobanteID {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── inventario / kardex ──────────────────────────────────────────────────────

type stockKey struct {
	producto uuid.UUID
	almacen  uuid.UUID
}

// stubInventarioRepo guards its map with a mutex so the conditional
// decrement is atomic, like the real UPDATE … WHERE stock >= ?.
type stubInventarioRepo struct {
	mu    sync.Mutex
	stock map[stockKey]*model.Inventario
}

func newStubInventarioRepo() *stubInventarioRepo {
	return &stubInventarioRepo{stock: make(map[stockKey]*model.Inventario)}
}

func (r *stubInventarioRepo) seed(productoID, almacenID uuid.UUID, cantidad int) {
	k := stockKey{productoID, almacenID}
	r.stock[k] = &model.Inventario{
		ID: uuid.New(), ProductoID: productoID, AlmacenID: almacenID, Stock: cantidad,
	}
}

func (r *stubInventarioRepo) FindStock(_ context.Context, productoID, almacenID uuid.UUID) (*model.Inventario, error) {
	return r.FindStockTx(nil, productoID, almacenID)
}

func (r *stubInventarioRepo) FindStockTx(_ *gorm.DB, productoID, almacenID uuid.UUID) (*model.Inventario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.stock[stockKey{productoID, almacenID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Copy: a SELECT returns a snapshot, not a live row.
	copia := *inv
	return &copia, nil
}

func (r *stubInventarioRepo) DescontarTx(_ *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.stock[stockKey{productoID, almacenID}]
	if !ok || inv.Stock < cantidad {
		return 0, nil // guard failed: zero rows affected
	}
	inv.Stock -= cantidad
	return 1, nil
}

func (r *stubInventarioRepo) RestaurarTx(_ *gorm.DB, productoID, almacenID uuid.UUID, cantidad int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.stock[stockKey{productoID, almacenID}]
	if !ok {
		return 0, nil
	}
	inv.Stock += cantidad
	return 1, nil
}

func (r *stubInventarioRepo) CreateTx(_ *gorm.DB, inv *model.Inventario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.stock[stockKey{inv.ProductoID, inv.AlmacenID}] = inv
	return nil
}

func (r *stubInventarioRepo) ListByAlmacen(_ context.Context, almacenID uuid.UUID) ([]model.Inventario, error) {
	var out []model.Inventario
	for _, inv := range r.stock {
		if inv.AlmacenID == almacenID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventarioRepo) TotalStock(_ context.Context, productoID uuid.UUID) (int, error) {
	total := 0
	for _, inv := range r.stock {
		if inv.ProductoID == productoID {
			total += inv.Stock
		}
	}
	return total, nil
}

var _ repository.InventarioRepository = (*stubInventarioRepo)(nil)

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []*model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.ProductoID != nil && m.ProductoID == *filter.ProductoID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── usuarios / productos / clientes ──────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[string]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.usuarios[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	variantes map[uuid.UUID]*model.ProductoVariante
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		variantes: make(map[uuid.UUID]*model.ProductoVariante),
	}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) FindVariante(_ context.Context, id uuid.UUID) (*model.ProductoVariante, error) {
	v, ok := r.variantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) FindByDocumento(_ context.Context, documento string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if (c.DNI != nil && *c.DNI == documento) || (c.RUC != nil && *c.RUC == documento) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, _, _ int) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)
