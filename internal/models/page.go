package models

// Page is one page of the customer list together with the totals of the whole result.
type Page struct {
	Total             int        // Total number of matching customers.
	Current           int        // Current page number, starting at 1.
	Pages             int        // Pages is the number of pages at the requested page size.
	Customers         []Customer // Customers on this page; empty when nothing matched.
	ViewerID          string     // ViewerID identifies the logged in sales agent.
	CanEditMasterData bool       // CanEditMasterData enables the master data link in the list.
}

// Empty reports whether the page carries no customers.
func (p *Page) Empty() bool {
	return p == nil || len(p.Customers) == 0
}

// ColorOption is a selectable row color.
type ColorOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ColorOptions lists the row colors in display order.
var ColorOptions = []ColorOption{
	{Code: "null", Label: "Farbcode"},
	{Code: "black", Label: "schwarz"},
	{Code: "lightblue", Label: "blau"},
	{Code: "xxxFF00008F", Label: "rot"},
	{Code: "xxxFFC65E", Label: "orange"},
	{Code: "yellow", Label: "gelb"},
	{Code: "xxx7bed7b", Label: "grün"},
	{Code: "lightpink", Label: "pink"},
}

// ColorLabel returns the display label of a color code, or "" if the code is unknown.
func ColorLabel(code string) string {
	for _, opt := range ColorOptions {
		if opt.Code == code {
			return opt.Label
		}
	}

	return ""
}
