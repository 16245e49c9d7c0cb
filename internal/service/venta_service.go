package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"
	"andespos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo            repository.VentaRepository
	comprobantes    ComprobanteService
	comprobanteRepo repository.ComprobanteRepository
	inventario      InventarioService
	usuarioRepo     repository.UsuarioRepository
	productoRepo    repository.ProductoRepository
	clienteRepo     repository.ClienteRepository
	dispatcher      *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	comprobantes ComprobanteService,
	comprobanteRepo repository.ComprobanteRepository,
	inventario InventarioService,
	usuarioRepo repository.UsuarioRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:            repo,
		comprobantes:    comprobantes,
		comprobanteRepo: comprobanteRepo,
		inventario:      inventario,
		usuarioRepo:     usuarioRepo,
		productoRepo:    productoRepo,
		clienteRepo:     clienteRepo,
		dispatcher:      dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// resolvedDetalle is a sale line after product resolution and price math.
type resolvedDetalle struct {
	productoID  uuid.UUID
	varianteID  *uuid.UUID
	descripcion string
	cantidad    int
	precio      decimal.Decimal
	descuento   decimal.Decimal
	total       decimal.Decimal
}

var cien = decimal.NewFromInt(100)

// ── RegistrarVenta ───────────────────────────────────────────────────────────
// The sale pipeline:
//  1. Resolve cashier → branch → warehouse (never trusted from the client)
//  2. Resolve or create the client by document
//  3. Resolve products, compute line totals and the tax breakdown
//  4. Validate payments cover the total
//  5. ONE transaction: voucher number under row lock, comprobante (the
//     durable submission intent), venta + detalles + pagos, guarded stock
//     decrements with their kardex rows
//  6. Post-commit: enqueue the fiscal emission job (fire and forget — the
//     retry cron covers a lost enqueue)

func (s *ventaService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if _, ok := map[string]bool{
		model.TipoBoleta: true, model.TipoFactura: true, model.TipoNotaDeVenta: true,
	}[req.TipoComprobante]; !ok {
		return nil, ErrTipoComprobanteInvalido
	}
	esFiscal := req.TipoComprobante != model.TipoNotaDeVenta

	usuario, err := s.usuarioRepo.FindByUsername(ctx, req.Usuario)
	if err != nil {
		return nil, &NotFoundError{Entidad: "usuario", ID: req.Usuario}
	}
	if usuario.Sucursal == nil {
		return nil, validationErrorf("usuario %s sin sucursal asignada", req.Usuario)
	}
	almacenID := usuario.Sucursal.AlmacenID

	fechaEmision, err := time.Parse(time.RFC3339, req.FechaEmision)
	if err != nil {
		return nil, validationErrorf("fecha_emision inválida: %v", err)
	}

	cliente, err := s.resolverCliente(ctx, req)
	if err != nil {
		return nil, err
	}

	// Resolve products and compute totals (pre-flight, outside TX).
	resolved := make([]resolvedDetalle, 0, len(req.Detalles))
	total := decimal.Zero
	for _, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, validationErrorf("producto_id inválido: %v", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, &NotFoundError{Entidad: "producto", ID: d.ProductoID}
		}
		if !p.Activo {
			return nil, validationErrorf("producto %s está inactivo y no puede venderse", p.Descripcion)
		}

		var varID *uuid.UUID
		if d.VarianteID != nil {
			vid, err := uuid.Parse(*d.VarianteID)
			if err != nil {
				return nil, validationErrorf("variante_id inválido: %v", err)
			}
			variante, err := s.productoRepo.FindVariante(ctx, vid)
			if err != nil || variante.ProductoID != pid {
				return nil, &NotFoundError{Entidad: "variante", ID: *d.VarianteID}
			}
			varID = &vid
		}

		// total de línea = precio × cantidad × (1 − descuento%)
		bruto := d.Precio.Mul(decimal.NewFromInt(int64(d.Cantidad)))
		lineTotal := bruto.Mul(cien.Sub(d.DescuentoPct)).Div(cien).Round(2)
		total = total.Add(lineTotal)

		resolved = append(resolved, resolvedDetalle{
			productoID:  pid,
			varianteID:  varID,
			descripcion: p.Descripcion,
			cantidad:    d.Cantidad,
			precio:      d.Precio,
			descuento:   d.DescuentoPct,
			total:       lineTotal,
		})
	}

	// Prices are tax-inclusive: IGV = total − total / (1 + tasa/100)
	factor := decimal.NewFromInt(1).Add(req.TasaIGV.Div(cien))
	igv := total.Sub(total.Div(factor).Round(2))

	recibido := decimal.Zero
	for _, p := range req.Pagos {
		recibido = recibido.Add(p.Monto)
	}
	if recibido.LessThan(total) {
		return nil, ErrPagoInsuficiente
	}
	vuelto := recibido.Sub(total)

	estadoSunat := model.SunatNoAplica
	if esFiscal {
		estadoSunat = model.SunatPendiente
	}

	var venta model.Venta
	var comp model.Comprobante
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		serie, correlativo, numero, err := s.comprobantes.SiguienteTx(ctx, tx, req.TipoComprobante)
		if err != nil {
			return err
		}

		comp = model.Comprobante{
			Tipo:        req.TipoComprobante,
			Serie:       serie,
			Correlativo: correlativo,
			Numero:      numero,
			Estado:      estadoSunat,
		}
		if esFiscal {
			// The retry cron recovers this row even if the post-commit
			// enqueue never happens.
			next := time.Now().Add(computeInitialRetryDelay())
			comp.NextRetryAt = &next
		}
		if err := s.comprobanteRepo.CreateTx(ctx, tx, &comp); err != nil {
			return err
		}

		venta = model.Venta{
			SucursalID:    usuario.SucursalID,
			ClienteID:     cliente.ID,
			ComprobanteID: comp.ID,
			UsuarioID:     usuario.ID,
			FechaEmision:  fechaEmision,
			Total:         total,
			IGV:           igv,
			Recibido:      recibido,
			Vuelto:        vuelto,
			Estado:        model.VentaCompletada,
			EstadoSunat:   estadoSunat,
			Observacion:   req.Observacion,
		}
		for _, r := range resolved {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				ProductoID:   r.productoID,
				VarianteID:   r.varianteID,
				Cantidad:     r.cantidad,
				Precio:       r.precio,
				DescuentoPct: r.descuento,
				Total:        r.total,
			})
		}
		for _, p := range req.Pagos {
			venta.Pagos = append(venta.Pagos, model.VentaPago{Metodo: p.Metodo, Monto: p.Monto})
		}
		if err := s.repo.CreateTx(ctx, tx, &venta); err != nil {
			return err
		}

		ref := venta.ID
		for _, r := range resolved {
			if err := s.inventario.DescontarTx(ctx, tx,
				r.productoID, almacenID, r.cantidad,
				"venta", "Venta "+numero, &ref,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async fiscal emission — best effort: any outcome here never touches
	// the committed sale.
	if esFiscal && s.dispatcher != nil {
		err := s.dispatcher.EnqueueEmision(ctx, dto.EmisionJob{
			VentaID:       venta.ID.String(),
			ComprobanteID: comp.ID.String(),
		})
		if err != nil {
			log.Warn().Err(err).Str("numero", comp.Numero).
				Msg("venta: no se pudo encolar la emisión, el cron la recuperará")
		}
	}

	resp := s.construirRespuesta(&venta, &comp, resolved)
	return resp, nil
}

// computeInitialRetryDelay gives the async worker a head start before the
// retry cron considers the submission lost.
func computeInitialRetryDelay() time.Duration { return 2 * time.Minute }

func (s *ventaService) resolverCliente(ctx context.Context, req dto.RegistrarVentaRequest) (*model.Cliente, error) {
	doc := req.ClienteDoc
	if len(doc) != 8 && len(doc) != 11 {
		return nil, validationErrorf("cliente_doc debe ser DNI (8 dígitos) o RUC (11 dígitos)")
	}
	if req.TipoComprobante == model.TipoFactura && len(doc) != 11 {
		return nil, ErrFacturaRequiereRUC
	}

	cliente, err := s.clienteRepo.FindByDocumento(ctx, doc)
	if err == nil {
		return cliente, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Unknown client: create it on the fly with the provided name.
	if req.ClienteNombre == "" {
		return nil, validationErrorf("cliente_nombre es requerido para un cliente nuevo")
	}
	nuevo := &model.Cliente{Activo: true}
	if len(doc) == 11 {
		nuevo.RUC = &doc
		nuevo.RazonSocial = &req.ClienteNombre
	} else {
		nuevo.DNI = &doc
		nuevo.Nombres = &req.ClienteNombre
	}
	if err := s.clienteRepo.Create(ctx, nuevo); err != nil {
		return nil, err
	}
	return nuevo, nil
}

// ── AnularVenta ──────────────────────────────────────────────────────────────
// Reversal: restore every line's stock (with inverse kardex rows) and mark
// the sale voided, all in one transaction. The fiscal void notice is chained
// afterwards and never blocks the local void.

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NotFoundError{Entidad: "venta", ID: id.String()}
	}
	if venta.Estado == model.VentaAnulada {
		return ErrVentaAnulada
	}

	numero := ""
	if venta.Comprobante != nil {
		numero = venta.Comprobante.Numero
	}
	almacenID := uuid.Nil
	if venta.Sucursal != nil {
		almacenID = venta.Sucursal.AlmacenID
	}

	// Fiscal void notice — only for vouchers SUNAT already accepted. A still
	// pending emission chains its own baja on acceptance; rejected or errored
	// vouchers have nothing to void.
	comp := venta.Comprobante
	solicitarBaja := comp != nil && comp.EsFiscal() && comp.Estado == model.SunatAceptado

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ref := venta.ID
		for _, d := range venta.Detalles {
			if err := s.inventario.RestaurarTx(ctx, tx,
				d.ProductoID, almacenID, d.Cantidad,
				"anulacion_venta", fmt.Sprintf("Anulación venta %s — %s", numero, motivo), &ref,
			); err != nil {
				return err
			}
		}
		if err := s.repo.AnularTx(tx, id, motivo); err != nil {
			return err
		}
		if solicitarBaja {
			// The estado flip and next_retry_at commit with the void: the
			// retry cron recovers the baja even if the enqueue below is lost.
			comp.Estado = model.CompBajaSolicitada
			next := time.Now().Add(computeInitialRetryDelay())
			comp.NextRetryAt = &next
			return s.comprobanteRepo.UpdateTx(ctx, tx, comp)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if solicitarBaja && s.dispatcher != nil {
		err := s.dispatcher.EnqueueBaja(ctx, dto.BajaJob{
			VentaID:       venta.ID.String(),
			ComprobanteID: comp.ID.String(),
			Motivo:        motivo,
		})
		if err != nil {
			log.Warn().Err(err).Str("numero", numero).
				Msg("venta: no se pudo encolar la baja, el cron la recuperará")
		}
	}
	return nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "venta", ID: id.String()}
	}
	return ventaToResponse(venta), nil
}

// ListVentas returns a paginated list of sales, default: today's completed.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaCompletada
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaListItem, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, *ventaToListItem(&v))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *ventaService) construirRespuesta(v *model.Venta, comp *model.Comprobante, resolved []resolvedDetalle) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(resolved))
	for _, r := range resolved {
		detalles = append(detalles, dto.DetalleVentaResponse{
			Producto:     r.descripcion,
			Cantidad:     r.cantidad,
			Precio:       r.precio,
			DescuentoPct: r.descuento,
			Total:        r.total,
		})
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		NumComprobante: comp.Numero,
		Detalles:       detalles,
		Total:          v.Total,
		IGV:            v.IGV,
		Recibido:       v.Recibido,
		Vuelto:         v.Vuelto,
		Estado:         v.Estado,
		EstadoSunat:    v.EstadoSunat,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}

func detallesToResponse(detalles []model.DetalleVenta) []dto.DetalleVentaResponse {
	out := make([]dto.DetalleVentaResponse, 0, len(detalles))
	for _, d := range detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Descripcion
		}
		out = append(out, dto.DetalleVentaResponse{
			Producto:     nombre,
			Cantidad:     d.Cantidad,
			Precio:       d.Precio,
			DescuentoPct: d.DescuentoPct,
			Total:        d.Total,
		})
	}
	return out
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	numero := ""
	if v.Comprobante != nil {
		numero = v.Comprobante.Numero
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		NumComprobante: numero,
		Detalles:       detallesToResponse(v.Detalles),
		Total:          v.Total,
		IGV:            v.IGV,
		Recibido:       v.Recibido,
		Vuelto:         v.Vuelto,
		Estado:         v.Estado,
		EstadoSunat:    v.EstadoSunat,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}

func ventaToListItem(v *model.Venta) *dto.VentaListItem {
	numero, tipo := "", ""
	if v.Comprobante != nil {
		numero = v.Comprobante.Numero
		tipo = v.Comprobante.Tipo
	}
	cliente := ""
	if v.Cliente != nil {
		cliente = v.Cliente.NombreCompleto()
	}
	return &dto.VentaListItem{
		ID:              v.ID.String(),
		NumComprobante:  numero,
		TipoComprobante: tipo,
		Cliente:         cliente,
		Fecha:           v.FechaEmision.Format(time.RFC3339),
		IGV:             v.IGV,
		Total:           v.Total,
		Estado:          v.Estado,
		EstadoSunat:     v.EstadoSunat,
		Detalles:        detallesToResponse(v.Detalles),
	}
}
