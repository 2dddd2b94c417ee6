package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a customer row as delivered by the WordPress plugin. Fields arrive as
// strings, numbers or nulls depending on the column, so every field is decoded leniently.
type Record struct {
	ID            Text   `json:"ID"`
	Number        Text   `json:"Kdnr"`
	Name          Text   `json:"Kundenname"`
	ContactPerson Text   `json:"Ansprechperson"`
	Street        Text   `json:"Strasse"`
	PostalCode    Text   `json:"PLZ"`
	City          Text   `json:"Ort"`
	Phone         Text   `json:"Telefon"`
	Comment       Text   `json:"Kommentar"`
	ColorCode     Text   `json:"Farbcode"`
	Industry      Text   `json:"Branche"`
	Employees     Number `json:"AnzahlMA"`
	ContactDate   Text   `json:"kontaktDatum"`
	ContactAgent  Text   `json:"kontaktVertreter"`
	Latitude      Number `json:"latitude"`
	Longitude     Number `json:"longitude"`
	GeocodeGoogle Text   `json:"geocode_google"`
	GeocodeMapsCo Text   `json:"geocode_maps_co"`
}

// Text decodes any JSON scalar into its string form; null and false become "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		*t = Text(data)
		return nil
	}
}

// Int returns the text as an integer, 0 when it is not numeric.
func (t Text) Int() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	if err != nil {
		return 0
	}

	return n
}

// Number decodes a JSON number or numeric string; anything unparsable becomes 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var text Text
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(value)

	return nil
}

// RecordList decodes the customers payload, which is false or null when nothing matched.
type RecordList []Record

// UnmarshalJSON implements json.Unmarshaler.
func (l *RecordList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	*l = records

	return nil
}
