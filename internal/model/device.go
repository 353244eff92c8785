package model

// Device is one phone model with its full field set as stored. All
// specification fields are optional free-text columns; a nil pointer means
// the column is NULL.
type Device struct {
	ID              int64   `json:"model_id"`
	Name            string  `json:"model_name"`
	CompanyID       int64   `json:"company_id"`
	CompanyName     string  `json:"company_name"`
	ProcessorID     *int64  `json:"processor_id,omitempty"`
	ProcessorName   *string `json:"processor_name,omitempty"`
	MobileWeight    *string `json:"mobile_weight,omitempty"`
	RAM             *string `json:"ram,omitempty"`
	FrontCamera     *string `json:"front_camera,omitempty"`
	BackCamera      *string `json:"back_camera,omitempty"`
	BatteryCapacity *string `json:"battery_capacity,omitempty"`
	ScreenSize      *string `json:"screen_size,omitempty"`
	LaunchedYear    *int64  `json:"launched_year,omitempty"`
}

// DeviceInput is the mutable field set for creating or replacing a device.
// The processor is supplied by name and resolved to a reference row
// (lookup-or-create) by the store.
type DeviceInput struct {
	Name            string  `json:"model_name"`
	CompanyID       int64   `json:"company_id"`
	ProcessorName   *string `json:"processor_name,omitempty"`
	MobileWeight    *string `json:"mobile_weight,omitempty"`
	RAM             *string `json:"ram,omitempty"`
	FrontCamera     *string `json:"front_camera,omitempty"`
	BackCamera      *string `json:"back_camera,omitempty"`
	BatteryCapacity *string `json:"battery_capacity,omitempty"`
	ScreenSize      *string `json:"screen_size,omitempty"`
	LaunchedYear    *int64  `json:"launched_year,omitempty"`
}

// DeviceListItem is a device row annotated for listings: company and
// processor names joined in, plus the number of distinct regions that have
// a price for it.
type DeviceListItem struct {
	ID              int64   `json:"model_id"`
	Name            string  `json:"model_name"`
	CompanyName     string  `json:"company_name"`
	ProcessorName   *string `json:"processor_name,omitempty"`
	MobileWeight    *string `json:"mobile_weight,omitempty"`
	RAM             *string `json:"ram,omitempty"`
	FrontCamera     *string `json:"front_camera,omitempty"`
	BackCamera      *string `json:"back_camera,omitempty"`
	BatteryCapacity *string `json:"battery_capacity,omitempty"`
	ScreenSize      *string `json:"screen_size,omitempty"`
	LaunchedYear    *int64  `json:"launched_year,omitempty"`
	PriceRegions    int64   `json:"price_regions"`
}

// SearchResult is a device row returned by free-text search.
type SearchResult struct {
	ID              int64   `json:"model_id"`
	Name            string  `json:"model_name"`
	CompanyName     string  `json:"company_name"`
	RAM             *string `json:"ram,omitempty"`
	BatteryCapacity *string `json:"battery_capacity,omitempty"`
	LaunchedYear    *int64  `json:"launched_year,omitempty"`
}
