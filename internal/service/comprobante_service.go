package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"andespos/internal/model"
	"andespos/internal/repository"

	"gorm.io/gorm"
)

// Series prefix per document type. The series embeds the prefix, so two
// document types can never collide on a voucher number.
var prefijosSerie = map[string]string{
	model.TipoBoleta:      "B",
	model.TipoFactura:     "F",
	model.TipoNotaDeVenta: "N",
}

const maxCorrelativo = 99_999_999

// ComprobanteService assigns legally sequential voucher numbers. The
// assignment MUST run inside the same transaction as the sale insert: the
// row lock taken by FindUltimoTx serializes concurrent sales of the same
// document type, and a rollback releases the number without burning it.
type ComprobanteService interface {
	// SiguienteTx returns the next (serie, correlativo, numero) for a
	// document type. Numbering starts at <prefijo>001-00000001 and rolls
	// over into a fresh series when the correlative exhausts 8 digits.
	SiguienteTx(ctx context.Context, tx *gorm.DB, tipo string) (serie, correlativo, numero string, err error)
}

type comprobanteService struct {
	repo repository.ComprobanteRepository
}

func NewComprobanteService(repo repository.ComprobanteRepository) ComprobanteService {
	return &comprobanteService{repo: repo}
}

func (s *comprobanteService) SiguienteTx(ctx context.Context, tx *gorm.DB, tipo string) (string, string, string, error) {
	prefijo, ok := prefijosSerie[tipo]
	if !ok {
		return "", "", "", ErrTipoComprobanteInvalido
	}

	ultimo, err := s.repo.FindUltimoTx(ctx, tx, tipo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			serie := fmt.Sprintf("%s%03d", prefijo, 1)
			return serie, fmt.Sprintf("%08d", 1), serie + "-00000001", nil
		}
		return "", "", "", err
	}

	serieNum, err := strconv.Atoi(ultimo.Serie[len(prefijo):])
	if err != nil {
		return "", "", "", fmt.Errorf("serie corrupta %q: %w", ultimo.Serie, err)
	}
	corr, err := strconv.Atoi(ultimo.Correlativo)
	if err != nil {
		return "", "", "", fmt.Errorf("correlativo corrupto %q: %w", ultimo.Correlativo, err)
	}

	if corr >= maxCorrelativo {
		// Series exhausted: open the next one, correlative restarts at 1.
		serieNum++
		corr = 1
	} else {
		corr++
	}

	serie := fmt.Sprintf("%s%03d", prefijo, serieNum)
	correlativo := fmt.Sprintf("%08d", corr)
	return serie, correlativo, serie + "-" + correlativo, nil
}
