package dto

// StockItem is one row of the per-warehouse stock listing.
type StockItem struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
	Stock       int    `json:"stock"`
}
