package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ── SUNAT e-invoicing client ─────────────────────────────────────────────────
// Talks to the REST gateway that wraps SUNAT's SOAP services. Three
// operations: invoice emission, voided notice (facturas) and daily summary
// (boletas). Errors are classified into two families the callers depend on:
//
//   *SunatRejectionError   — SUNAT validated and refused the document.
//                            Terminal: retrying the same payload cannot help.
//   *SunatUnavailableError — the gateway or network failed before a verdict.
//                            Transient: the submission must be retried.

// SunatRejectionError is a definitive rejection (CDR with error code, or a
// 4xx from the gateway's validation layer).
type SunatRejectionError struct {
	Codigo      string
	Descripcion string
}

func (e *SunatRejectionError) Error() string {
	return fmt.Sprintf("sunat rechazó el documento [%s]: %s", e.Codigo, e.Descripcion)
}

// SunatUnavailableError wraps transport failures, 5xx and 429 responses.
type SunatUnavailableError struct {
	Causa error
}

func (e *SunatUnavailableError) Error() string {
	return fmt.Sprintf("sunat no disponible: %v", e.Causa)
}

func (e *SunatUnavailableError) Unwrap() error { return e.Causa }

// ── Payload types ────────────────────────────────────────────────────────────
// Field names follow the gateway's UBL-flavored JSON contract.

type CompanyAddress struct {
	Ubigeo       string `json:"ubigueo"`
	Departamento string `json:"departamento"`
	Provincia    string `json:"provincia"`
	Distrito     string `json:"distrito"`
	Direccion    string `json:"direccion"`
	CodLocal     string `json:"codLocal"`
}

type Company struct {
	RUC             string         `json:"ruc"`
	RazonSocial     string         `json:"razonSocial"`
	NombreComercial string         `json:"nombreComercial"`
	Address         CompanyAddress `json:"address"`
}

type InvoiceClient struct {
	// TipoDoc: catálogo 06 — "1" DNI, "6" RUC, "0" sin documento
	TipoDoc   string `json:"tipoDoc"`
	NumDoc    string `json:"numDoc"`
	RznSocial string `json:"rznSocial"`
}

type InvoiceDetail struct {
	CodProducto string  `json:"codProducto"`
	Unidad      string  `json:"unidad"`
	Cantidad    int     `json:"cantidad"`
	Descripcion string  `json:"descripcion"`
	// MtoValorUnitario is the unit price WITHOUT tax
	MtoValorUnitario  float64 `json:"mtoValorUnitario"`
	MtoValorVenta     float64 `json:"mtoValorVenta"`
	MtoBaseIgv        float64 `json:"mtoBaseIgv"`
	PorcentajeIgv     float64 `json:"porcentajeIgv"`
	Igv               float64 `json:"igv"`
	TipAfeIgv         string  `json:"tipAfeIgv"` // "10" = gravado, operación onerosa
	TotalImpuestos    float64 `json:"totalImpuestos"`
	MtoPrecioUnitario float64 `json:"mtoPrecioUnitario"` // WITH tax
}

type Legend struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

type InvoicePayload struct {
	UblVersion    string          `json:"ublVersion"`    // "2.1"
	TipoOperacion string          `json:"tipoOperacion"` // "0101" venta interna
	TipoDoc       string          `json:"tipoDoc"`       // "03" boleta, "01" factura
	Serie         string          `json:"serie"`
	Correlativo   string          `json:"correlativo"`
	FechaEmision  string          `json:"fechaEmision"` // RFC3339, -05:00
	TipoMoneda    string          `json:"tipoMoneda"`   // "PEN"
	Client        InvoiceClient   `json:"client"`
	Company       Company         `json:"company"`
	MtoOperGravadas float64       `json:"mtoOperGravadas"`
	MtoIGV          float64       `json:"mtoIGV"`
	TotalImpuestos  float64       `json:"totalImpuestos"`
	ValorVenta      float64       `json:"valorVenta"`
	SubTotal        float64       `json:"subTotal"`
	MtoImpVenta     float64       `json:"mtoImpVenta"`
	Details         []InvoiceDetail `json:"details"`
	Legends         []Legend        `json:"legends"`
}

// VoidedPayload is the comunicación de baja for facturas.
type VoidedPayload struct {
	Correlativo     string         `json:"correlativo"`
	FecGeneracion   string         `json:"fecGeneracion"`
	FecComunicacion string         `json:"fecComunicacion"`
	Company         Company        `json:"company"`
	Details         []VoidedDetail `json:"details"`
}

type VoidedDetail struct {
	TipoDoc     string `json:"tipoDoc"`
	Serie       string `json:"serie"`
	Correlativo string `json:"correlativo"`
	Desc        string `json:"desMotivoBaja"`
}

// SummaryPayload is the resumen diario; boleta voids travel as estado "3"
// lines inside it.
type SummaryPayload struct {
	Correlativo  string          `json:"correlativo"`
	FecGeneracion string         `json:"fecGeneracion"`
	FecResumen    string         `json:"fecResumen"`
	Moneda        string         `json:"moneda"`
	Company       Company        `json:"company"`
	Details       []SummaryDetail `json:"details"`
}

type SummaryDetail struct {
	TipoDoc       string  `json:"tipoDoc"`
	Serie         string  `json:"serieNro"` // "B001-00000001"
	Estado        string  `json:"estado"`   // "1" adición, "3" anulación
	ClienteTipo   string  `json:"clienteTipo"`
	ClienteNro    string  `json:"clienteNro"`
	Total         float64 `json:"total"`
	MtoOperGravadas float64 `json:"mtoOperGravadas"`
	MtoIGV          float64 `json:"mtoIGV"`
}

// ── Response ─────────────────────────────────────────────────────────────────

type cdrResponse struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Notes       []string `json:"notes"`
}

type sunatResponse struct {
	Success     bool        `json:"success"`
	CdrResponse cdrResponse `json:"cdrResponse"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type gatewayResponse struct {
	SunatResponse sunatResponse `json:"sunatResponse"`
}

// SunatResult is the accepted-document verdict.
type SunatResult struct {
	Codigo      string
	Descripcion string
	Notas       []string
}

// ── Client ───────────────────────────────────────────────────────────────────

type SunatClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewSunatClient(baseURL, token string) *SunatClient {
	return &SunatClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SendInvoice submits a boleta or factura for emission.
func (c *SunatClient) SendInvoice(ctx context.Context, payload InvoicePayload) (*SunatResult, error) {
	return c.post(ctx, "/invoice/send", payload)
}

// SendVoided submits a comunicación de baja (facturas only).
func (c *SunatClient) SendVoided(ctx context.Context, payload VoidedPayload) (*SunatResult, error) {
	return c.post(ctx, "/voided/send", payload)
}

// SendSummary submits a resumen diario (carries boleta voids).
func (c *SunatClient) SendSummary(ctx context.Context, payload SummaryPayload) (*SunatResult, error) {
	return c.post(ctx, "/summary/send", payload)
}

func (c *SunatClient) post(ctx context.Context, path string, payload interface{}) (*SunatResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sunat: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sunat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SunatUnavailableError{Causa: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &SunatUnavailableError{
			Causa: fmt.Errorf("gateway devolvió %d", resp.StatusCode),
		}
	case resp.StatusCode >= 400:
		var gw gatewayResponse
		_ = json.NewDecoder(resp.Body).Decode(&gw)
		desc := gw.SunatResponse.CdrResponse.Description
		if gw.SunatResponse.Error != nil {
			desc = gw.SunatResponse.Error.Message
		}
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return nil, &SunatRejectionError{
			Codigo:      fmt.Sprintf("HTTP-%d", resp.StatusCode),
			Descripcion: desc,
		}
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return nil, &SunatUnavailableError{Causa: fmt.Errorf("respuesta ilegible: %w", err)}
	}

	sr := gw.SunatResponse
	if !sr.Success {
		codigo := sr.CdrResponse.Code
		desc := sr.CdrResponse.Description
		if sr.Error != nil {
			codigo = sr.Error.Code
			desc = sr.Error.Message
		}
		return nil, &SunatRejectionError{Codigo: codigo, Descripcion: desc}
	}

	return &SunatResult{
		Codigo:      sr.CdrResponse.Code,
		Descripcion: sr.CdrResponse.Description,
		Notas:       sr.CdrResponse.Notes,
	}, nil
}
