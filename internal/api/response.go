package api

import (
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/UnknownOlympus/meridian/internal/service"
)

type customerResponse struct {
	ID             int     `json:"id"`
	Number         string  `json:"number"`
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	ContactPerson  string  `json:"contactPerson"`
	Street         string  `json:"street"`
	PostalCode     string  `json:"postalCode"`
	City           string  `json:"city"`
	Phone          string  `json:"phone"`
	Comment        string  `json:"comment"`
	ColorCode      string  `json:"colorCode"`
	Color          string  `json:"color"`
	ColorLabel     string  `json:"colorLabel"`
	Industry       string  `json:"industry"`
	Employees      int     `json:"employees"`
	ContactDate    string  `json:"contactDate"`
	ContactAgent   string  `json:"contactAgent"`
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lon"`
	NeedsGeocoding bool    `json:"needsGeocoding"`
	Unresolvable   bool    `json:"unresolvable"`
}

type pageResponse struct {
	Total             int                `json:"total"`
	Page              int                `json:"page"`
	Pages             int                `json:"pages"`
	Query             string             `json:"query"`
	ViewerID          string             `json:"viewerId"`
	CanEditMasterData bool               `json:"canEditMasterData"`
	Customers         []customerResponse `json:"customers"`
}

type markerResponse struct {
	CustomerID int     `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	Color      string  `json:"color"`
	Category   string  `json:"category"`
}

type mapResponse struct {
	Total     int              `json:"total"`
	Pages     int              `json:"pages"`
	Fetched   int              `json:"fetched"`
	Queued    int              `json:"queued"`
	Truncated bool             `json:"truncated"`
	Markers   []markerResponse `json:"markers"`
}

type statusResponse struct {
	Enabled   bool `json:"enabled"`
	Busy      bool `json:"busy"`
	Queued    int  `json:"queued"`
	Processed int  `json:"processed"`
}

func newPageResponse(page *models.Page, state search.State) pageResponse {
	resp := pageResponse{
		Total:             page.Total,
		Page:              page.Current,
		Pages:             page.Pages,
		Query:             state.Encode(),
		ViewerID:          page.ViewerID,
		CanEditMasterData: page.CanEditMasterData,
		Customers:         make([]customerResponse, 0, len(page.Customers)),
	}
	for i := range page.Customers {
		c := &page.Customers[i]
		resp.Customers = append(resp.Customers, customerResponse{
			ID:             c.ID,
			Number:         c.Number,
			Category:       string(c.Category()),
			Name:           c.Name,
			ContactPerson:  c.ContactPerson,
			Street:         c.Street,
			PostalCode:     c.PostalCode,
			City:           c.City,
			Phone:          c.Phone,
			Comment:        c.Comment,
			ColorCode:      c.ColorCode,
			Color:          c.RowColor(),
			ColorLabel:     models.ColorLabel(c.ColorCode),
			Industry:       c.Industry,
			Employees:      c.Employees,
			ContactDate:    c.ContactDate,
			ContactAgent:   c.ContactAgent,
			Latitude:       c.Latitude,
			Longitude:      c.Longitude,
			NeedsGeocoding: c.NeedsGeocoding(),
			Unresolvable:   c.Unresolvable(),
		})
	}

	return resp
}

func newMapResponse(result *service.MapResult) mapResponse {
	resp := mapResponse{
		Total:     result.Total,
		Pages:     result.Pages,
		Fetched:   result.Fetched,
		Queued:    result.Queued,
		Truncated: result.Truncated,
		Markers:   make([]markerResponse, 0, len(result.Markers)),
	}
	for _, m := range result.Markers {
		resp.Markers = append(resp.Markers, markerResponse{
			CustomerID: m.CustomerID,
			Name:       m.Name,
			Address:    m.Address,
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			Color:      m.Color,
			Category:   string(m.Category),
		})
	}

	return resp
}
