package model

// Price is one launch price for a (model, region) pair. The store enforces
// at most one row per pair; writes go through the upsert operation.
type Price struct {
	ID       int64   `json:"price_id"`
	ModelID  int64   `json:"model_id"`
	RegionID int64   `json:"region_id"`
	Amount   float64 `json:"price"`
}

// PriceListItem is a price row joined with its region name for display.
type PriceListItem struct {
	ID         int64   `json:"price_id"`
	ModelID    int64   `json:"model_id"`
	RegionID   int64   `json:"region_id"`
	RegionName string  `json:"region_name"`
	Amount     float64 `json:"price"`
}

// RegionStats aggregates prices for one region.
type RegionStats struct {
	RegionName  string  `json:"region_name"`
	ModelsCount int64   `json:"models_count"`
	AvgPrice    float64 `json:"avg_price"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
}
