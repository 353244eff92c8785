package model

// Region is a fixed reference row for a pricing market.
type Region struct {
	ID   int64  `json:"region_id"`
	Name string `json:"region_name"`
}

// Currency describes how prices for a region are denominated and displayed.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// currencies maps the seeded region names to their currencies.
var currencies = map[string]Currency{
	"Pakistan": {Code: "PKR", Symbol: "₨"},
	"India":    {Code: "INR", Symbol: "₹"},
	"China":    {Code: "CNY", Symbol: "¥"},
	"USA":      {Code: "USD", Symbol: "$"},
	"Dubai":    {Code: "AED", Symbol: "د.إ"},
}

// CurrencyFor returns the currency for a region name, defaulting to USD for
// regions added outside the seeded set.
func CurrencyFor(region string) Currency {
	if c, ok := currencies[region]; ok {
		return c
	}
	return Currency{Code: "USD", Symbol: "$"}
}
