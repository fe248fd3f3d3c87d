package models

import "time"

// CoordsSource records where an address's coordinates came from. Pricing
// must never consume coordinates tagged CoordsUnresolved.
type CoordsSource string

const (
	CoordsSaved      CoordsSource = "saved"
	CoordsGeocoded   CoordsSource = "geocoded"
	CoordsPincode    CoordsSource = "pincode"
	CoordsUnresolved CoordsSource = "unresolved"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the pair is the 0,0 placeholder.
func (p LatLng) IsZero() bool { return p.Lat == 0 && p.Lng == 0 }

// Address is a saved shipping address. Exactly one address per user carries
// IsDefault; the repository enforces that on write.
type Address struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Line           string       `json:"line"`
	City           string       `json:"city"`
	State          string       `json:"state"`
	Pincode        string       `json:"pincode"`
	PostalDistrict string       `json:"postal_district,omitempty"`
	AdminDistrict  string       `json:"admin_district,omitempty"`
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	CoordsSource   CoordsSource `json:"coords_source"`
	IsDefault      bool         `json:"is_default"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Coords returns the stored coordinate pair.
func (a *Address) Coords() LatLng { return LatLng{Lat: a.Lat, Lng: a.Lng} }

// SaveAddressRequest is the payload for creating or replacing an address.
type SaveAddressRequest struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required,inmobile"`
	Line      string `json:"line" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
	IsDefault bool   `json:"is_default"`
}

// District is the result of resolving a pincode against the postal dataset.
// Deliverable is precomputed against the serviceable-state set; resolution
// success alone never implies it.
type District struct {
	Pincode        string   `json:"pincode"`
	State          string   `json:"state"`
	PostalDistrict string   `json:"postal_district"`
	AdminDistrict  string   `json:"admin_district"`
	Cities         []string `json:"cities,omitempty"`
	Deliverable    bool     `json:"deliverable"`
}
