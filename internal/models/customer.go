package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Unfound is the provider flag value for an address that was already looked up without a result.
const Unfound = "unfound"

// Category is the opaque customer class used by the host UI to pick a marker style.
type Category string

const (
	// CategoryBK marks a customer with a customer number (business customer).
	CategoryBK Category = "BK"
	// CategoryNK marks a prospect without a customer number.
	CategoryNK Category = "NK"
)

// Customer is a single entry of the customer list.
type Customer struct {
	ID            int     // ID is the record identifier.
	Number        string  // Number is the customer number (Kdnr), "0" or empty for prospects.
	Name          string  // Name is the company or person name.
	ContactPerson string  // ContactPerson is the name of the person to talk to.
	Street        string  // Street including the house number.
	PostalCode    string  // PostalCode of the address.
	City          string  // City of the address.
	Phone         string  // Phone number.
	Comment       string  // Comment is free text kept by sales staff.
	ColorCode     string  // ColorCode is the row highlight chosen in the list.
	Industry      string  // Industry (Branche).
	Employees     int     // Employees is the head count, 0 when unknown.
	ContactDate   string  // ContactDate of the last contact.
	ContactAgent  string  // ContactAgent who made the last contact.
	Latitude      float64 // Latitude, 0 when not geocoded yet.
	Longitude     float64 // Longitude, 0 when not geocoded yet.
	GeocodeGoogle string  // GeocodeGoogle is the Google provider flag.
	GeocodeMapsCo string  // GeocodeMapsCo is the maps.co provider flag, Unfound when the address failed before.
}

// NewCustomer builds a customer from a server record.
func NewCustomer(rec Record) Customer {
	return Customer{
		ID:            rec.ID.Int(),
		Number:        string(rec.Number),
		Name:          string(rec.Name),
		ContactPerson: string(rec.ContactPerson),
		Street:        string(rec.Street),
		PostalCode:    string(rec.PostalCode),
		City:          string(rec.City),
		Phone:         string(rec.Phone),
		Comment:       string(rec.Comment),
		ColorCode:     string(rec.ColorCode),
		Industry:      string(rec.Industry),
		Employees:     int(rec.Employees),
		ContactDate:   string(rec.ContactDate),
		ContactAgent:  string(rec.ContactAgent),
		Latitude:      float64(rec.Latitude),
		Longitude:     float64(rec.Longitude),
		GeocodeGoogle: string(rec.GeocodeGoogle),
		GeocodeMapsCo: string(rec.GeocodeMapsCo),
	}
}

// NeedsGeocoding reports whether the customer has no coordinates at all.
func (c *Customer) NeedsGeocoding() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// HasCoordinates reports whether the customer can be placed on a map.
func (c *Customer) HasCoordinates() bool {
	return !c.NeedsGeocoding()
}

// Unresolvable reports whether the address was marked as not found by an earlier lookup.
func (c *Customer) Unresolvable() bool {
	return c.GeocodeMapsCo == Unfound
}

// Address returns the query string sent to geocoding providers.
// Only the part of the street before the first "/" or "," is used, since door and
// staircase suffixes confuse most providers.
func (c *Customer) Address() string {
	street := c.Street
	if idx := strings.IndexAny(street, "/,"); idx >= 0 {
		street = street[:idx]
	}

	return fmt.Sprintf("%s, %s %s", strings.TrimSpace(street), c.PostalCode, c.City)
}

// Category returns BK for customers with a non-zero customer number and NK otherwise.
func (c *Customer) Category() Category {
	number := strings.TrimSpace(c.Number)
	if number == "" {
		return CategoryNK
	}
	if n, err := strconv.ParseFloat(number, 64); err == nil && n == 0 {
		return CategoryNK
	}

	return CategoryBK
}

// RowColor returns the CSS color for the customer's list row.
func (c *Customer) RowColor() string {
	return CSSColor(c.ColorCode)
}

// CSSColor converts a stored color code to CSS. Codes prefixed with "xxx" hold a hex value.
func CSSColor(code string) string {
	if hex, ok := strings.CutPrefix(code, "xxx"); ok {
		return "#" + hex
	}

	return code
}
