package models

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}

// StoredCoordinates is a resolved position waiting to be written back for a customer.
type StoredCoordinates struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	CustomerID int     `json:"KdID"`
}

// UnresolvedAddress marks a customer whose address the provider could not resolve,
// so it is not looked up again on later loads.
type UnresolvedAddress struct {
	CustomerID int `json:"KdID"`
}
