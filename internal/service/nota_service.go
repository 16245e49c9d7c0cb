package service

import (
	"context"
	"time"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotaService manages warehouse entry/exit notes. The note insert and its
// stock effects commit atomically; every line leaves a kardex row.
type NotaService interface {
	RegistrarNota(ctx context.Context, req dto.RegistrarNotaRequest) (*dto.NotaResponse, error)
	AnularNota(ctx context.Context, id uuid.UUID) error
	ObtenerNota(ctx context.Context, id uuid.UUID) (*dto.NotaResponse, error)
	ListNotas(ctx context.Context, filter dto.NotaFilter) (*dto.NotaListResponse, error)
}

type notaService struct {
	repo          repository.NotaRepository
	inventario    InventarioService
	usuarioRepo   repository.UsuarioRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
}

func NewNotaService(
	repo repository.NotaRepository,
	inventario InventarioService,
	usuarioRepo repository.UsuarioRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
) NotaService {
	return &notaService{
		repo:          repo,
		inventario:    inventario,
		usuarioRepo:   usuarioRepo,
		proveedorRepo: proveedorRepo,
		productoRepo:  productoRepo,
	}
}

func (s *notaService) RegistrarNota(ctx context.Context, req dto.RegistrarNotaRequest) (*dto.NotaResponse, error) {
	usuario, err := s.usuarioRepo.FindByUsername(ctx, req.Usuario)
	if err != nil {
		return nil, &NotFoundError{Entidad: "usuario", ID: req.Usuario}
	}
	almacenID, err := uuid.Parse(req.AlmacenID)
	if err != nil {
		return nil, validationErrorf("almacen_id inválido: %v", err)
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, validationErrorf("fecha inválida: %v", err)
	}

	var proveedorID *uuid.UUID
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, validationErrorf("proveedor_id inválido: %v", err)
		}
		if _, err := s.proveedorRepo.FindByID(ctx, pid); err != nil {
			return nil, &NotFoundError{Entidad: "proveedor", ID: *req.ProveedorID}
		}
		proveedorID = &pid
	}

	// Resolve products up front so a bad line fails before the transaction.
	type linea struct {
		productoID uuid.UUID
		cantidad   int
	}
	lineas := make([]linea, 0, len(req.Detalles))
	for _, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, validationErrorf("producto_id inválido: %v", err)
		}
		if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
			return nil, &NotFoundError{Entidad: "producto", ID: d.ProductoID}
		}
		lineas = append(lineas, linea{productoID: pid, cantidad: d.Cantidad})
	}

	var nota model.NotaAlmacen
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota = model.NotaAlmacen{
			Tipo:        req.Tipo,
			AlmacenID:   almacenID,
			ProveedorID: proveedorID,
			UsuarioID:   usuario.ID,
			Glosa:       req.Glosa,
			Fecha:       fecha,
			Estado:      model.NotaActiva,
		}
		for _, l := range lineas {
			nota.Detalles = append(nota.Detalles, model.DetalleNota{
				ProductoID: l.productoID,
				Cantidad:   l.cantidad,
			})
		}
		if err := s.repo.CreateTx(ctx, tx, &nota); err != nil {
			return err
		}

		ref := nota.ID
		for _, l := range lineas {
			if req.Tipo == model.NotaIngreso {
				err = s.inventario.RestaurarTx(ctx, tx, l.productoID, almacenID, l.cantidad,
					"nota_ingreso", "Nota de ingreso: "+req.Glosa, &ref)
			} else {
				err = s.inventario.DescontarTx(ctx, tx, l.productoID, almacenID, l.cantidad,
					"nota_salida", "Nota de salida: "+req.Glosa, &ref)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.ObtenerNota(ctx, nota.ID)
}

// AnularNota applies the inverse stock effect of every line. Voiding an
// entry note decrements stock, so it fails with *InsufficientStockError if
// the goods were already sold.
func (s *notaService) AnularNota(ctx context.Context, id uuid.UUID) error {
	nota, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NotFoundError{Entidad: "nota", ID: id.String()}
	}
	if nota.Estado == model.NotaAnulada {
		return ErrNotaAnulada
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ref := nota.ID
		motivo := "Anulación de nota: " + nota.Glosa
		for _, d := range nota.Detalles {
			var err error
			if nota.Tipo == model.NotaIngreso {
				err = s.inventario.DescontarTx(ctx, tx, d.ProductoID, nota.AlmacenID, d.Cantidad,
					"anulacion_nota", motivo, &ref)
			} else {
				err = s.inventario.RestaurarTx(ctx, tx, d.ProductoID, nota.AlmacenID, d.Cantidad,
					"anulacion_nota", motivo, &ref)
			}
			if err != nil {
				return err
			}
		}
		return s.repo.AnularTx(tx, id)
	})
}

func (s *notaService) ObtenerNota(ctx context.Context, id uuid.UUID) (*dto.NotaResponse, error) {
	nota, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entidad: "nota", ID: id.String()}
	}
	return notaToResponse(nota), nil
}

func (s *notaService) ListNotas(ctx context.Context, filter dto.NotaFilter) (*dto.NotaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	notas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.NotaResponse, 0, len(notas))
	for i := range notas {
		data = append(data, *notaToResponse(&notas[i]))
	}
	return &dto.NotaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func notaToResponse(n *model.NotaAlmacen) *dto.NotaResponse {
	detalles := make([]dto.DetalleNotaResponse, 0, len(n.Detalles))
	for _, d := range n.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Descripcion
		}
		detalles = append(detalles, dto.DetalleNotaResponse{Producto: nombre, Cantidad: d.Cantidad})
	}
	resp := &dto.NotaResponse{
		ID:       n.ID.String(),
		Tipo:     n.Tipo,
		Glosa:    n.Glosa,
		Fecha:    n.Fecha.Format("2006-01-02"),
		Estado:   n.Estado,
		Detalles: detalles,
	}
	if n.Almacen != nil {
		resp.Almacen = n.Almacen.Nombre
	}
	if n.Proveedor != nil {
		resp.Proveedor = &n.Proveedor.RazonSocial
	}
	return resp
}
