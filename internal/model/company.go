package model

// Company is a device manufacturer. Names are unique; deleting a company
// cascades to its models and, transitively, their prices.
type Company struct {
	ID   int64  `json:"company_id"`
	Name string `json:"company_name"`
}

// CompanyListItem is a company row annotated with its model count,
// as shown in the companies listing.
type CompanyListItem struct {
	ID          int64  `json:"company_id"`
	Name        string `json:"company_name"`
	ModelsCount int64  `json:"models_count"`
}

// Processor is a chipset referenced by zero or more models. Processors are
// created on first reference and never deleted by this system.
type Processor struct {
	ID   int64  `json:"processor_id"`
	Name string `json:"processor_name"`
}
