package models_test

import (
	"encoding/json"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_Address(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		street string
		want   string
	}{
		{name: "plain street", street: "Hauptplatz 1", want: "Hauptplatz 1, 8010 Graz"},
		{name: "door suffix", street: "Hauptplatz 1/3/12", want: "Hauptplatz 1, 8010 Graz"},
		{name: "comma suffix", street: "Hauptplatz 1, Top 4", want: "Hauptplatz 1, 8010 Graz"},
		{name: "empty street", street: "", want: ", 8010 Graz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			customer := models.Customer{Street: tt.street, PostalCode: "8010", City: "Graz"}
			assert.Equal(t, tt.want, customer.Address())
		})
	}
}

func TestCustomer_NeedsGeocoding(t *testing.T) {
	t.Parallel()

	assert.True(t, (&models.Customer{}).NeedsGeocoding())
	assert.False(t, (&models.Customer{Latitude: 47.1}).NeedsGeocoding())
	assert.False(t, (&models.Customer{Longitude: 15.4}).NeedsGeocoding())
	assert.True(t, (&models.Customer{Latitude: 47.1, Longitude: 15.4}).HasCoordinates())
}

func TestCustomer_Category(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.CategoryNK, (&models.Customer{}).Category())
	assert.Equal(t, models.CategoryNK, (&models.Customer{Number: "0"}).Category())
	assert.Equal(t, models.CategoryNK, (&models.Customer{Number: " 0 "}).Category())
	assert.Equal(t, models.CategoryBK, (&models.Customer{Number: "10234"}).Category())
	assert.Equal(t, models.CategoryBK, (&models.Customer{Number: "A-12"}).Category())
}

func TestCustomer_RowColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#FFC65E", (&models.Customer{ColorCode: "xxxFFC65E"}).RowColor())
	assert.Equal(t, "yellow", (&models.Customer{ColorCode: "yellow"}).RowColor())
	assert.Empty(t, (&models.Customer{}).RowColor())
	assert.Equal(t, "orange", models.ColorLabel("xxxFFC65E"))
	assert.Empty(t, models.ColorLabel("purple"))
}

func TestNewCustomer_FromRecord(t *testing.T) {
	t.Parallel()

	payload := `{
		"ID": "42", "Kdnr": 1001, "Kundenname": "Panda Office GmbH", "Ansprechperson": null,
		"Strasse": "Lendplatz 3/2", "PLZ": "8020", "Ort": "Graz", "AnzahlMA": "12",
		"latitude": "47.0707", "longitude": 15.4395, "geocode_maps_co": "unfound"
	}`

	var rec models.Record
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))
	customer := models.NewCustomer(rec)

	assert.Equal(t, 42, customer.ID)
	assert.Equal(t, "1001", customer.Number)
	assert.Equal(t, "Panda Office GmbH", customer.Name)
	assert.Empty(t, customer.ContactPerson)
	assert.Equal(t, 12, customer.Employees)
	assert.InEpsilon(t, 47.0707, customer.Latitude, 0.00001)
	assert.InEpsilon(t, 15.4395, customer.Longitude, 0.00001)
	assert.True(t, customer.Unresolvable())
	assert.Equal(t, "Lendplatz 3, 8020 Graz", customer.Address())
}

func TestRecordList_NoResults(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`false`, `null`, `""`} {
		var list models.RecordList
		require.NoError(t, json.Unmarshal([]byte(payload), &list))
		assert.Nil(t, list, payload)
	}

	var list models.RecordList
	require.NoError(t, json.Unmarshal([]byte(`[{"ID":"1"},{"ID":"2"}]`), &list))
	assert.Len(t, list, 2)
}

func TestNumber_Unparsable(t *testing.T) {
	t.Parallel()

	var rec models.Record
	require.NoError(t, json.Unmarshal([]byte(`{"latitude":"","longitude":"n/a","AnzahlMA":null}`), &rec))
	customer := models.NewCustomer(rec)

	assert.Zero(t, customer.Latitude)
	assert.Zero(t, customer.Longitude)
	assert.Zero(t, customer.Employees)
	assert.True(t, customer.NeedsGeocoding())
}
