package geo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"cs-store-backend/internal/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

var indiaBounds = Bounds{MinLat: 6.5546, MaxLat: 35.6745, MinLng: 68.1114, MaxLng: 97.3956}

// newTestResolver wires a client whose transport answers the full-address
// search with fullResp and the postalcode search with pincodeResp.
func newTestResolver(fullResp, pincodeResp string) ResolverInterface {
	client := NewGeocoderClient("http://geocoder.test", "in").(*nominatimClient)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			body := fullResp
			if req.URL.Query().Get("postalcode") != "" {
				body = pincodeResp
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     http.Header{},
			}, nil
		}),
	}
	return NewResolver(client, indiaBounds)
}

func TestSmartGeocodeFullAddressWins(t *testing.T) {
	r := newTestResolver(
		`[{"lat":"17.4065","lon":"78.4772"}]`,
		`[{"lat":"17.39","lon":"78.49"}]`,
	)
	p, src, err := r.SmartGeocode(context.Background(), "1-2-3 Street", "Hyderabad", "Telangana", "500001")
	if err != nil {
		t.Fatalf("SmartGeocode error: %v", err)
	}
	if src != models.CoordsGeocoded {
		t.Errorf("source = %s; want geocoded", src)
	}
	if p.Lat != 17.4065 || p.Lng != 78.4772 {
		t.Errorf("coords = %+v", p)
	}
}

func TestSmartGeocodeFallsBackToPincode(t *testing.T) {
	r := newTestResolver(`[]`, `[{"lat":"17.39","lon":"78.49"}]`)
	p, src, err := r.SmartGeocode(context.Background(), "nowhere", "", "", "500001")
	if err != nil {
		t.Fatalf("SmartGeocode error: %v", err)
	}
	if src != models.CoordsPincode {
		t.Errorf("source = %s; want pincode", src)
	}
	if p.Lat != 17.39 {
		t.Errorf("coords = %+v", p)
	}
}

func TestSmartGeocodeBothFail(t *testing.T) {
	r := newTestResolver(`[]`, `[]`)
	_, src, err := r.SmartGeocode(context.Background(), "nowhere", "", "", "500001")
	if !errors.Is(err, models.ErrAddressUnresolved) {
		t.Fatalf("error = %v; want ErrAddressUnresolved", err)
	}
	if src != models.CoordsUnresolved {
		t.Errorf("source = %s; want unresolved", src)
	}
}

func TestOutOfBoundsResultIsAFailure(t *testing.T) {
	// London is outside the India box; the full-address step must be
	// discarded and the in-bounds pincode centroid used instead.
	r := newTestResolver(
		`[{"lat":"51.5074","lon":"-0.1278"}]`,
		`[{"lat":"17.39","lon":"78.49"}]`,
	)
	p, src, err := r.SmartGeocode(context.Background(), "Baker Street", "", "", "500001")
	if err != nil {
		t.Fatalf("SmartGeocode error: %v", err)
	}
	if src != models.CoordsPincode {
		t.Errorf("source = %s; want pincode", src)
	}
	if p.Lng != 78.49 {
		t.Errorf("coords = %+v", p)
	}
}

func TestResolveCoordinatesPrefersSaved(t *testing.T) {
	// Transport would fail loudly if called; saved coordinates short-circuit.
	client := NewGeocoderClient("http://geocoder.test", "in").(*nominatimClient)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("transport must not be used")
		}),
	}
	r := NewResolver(client, indiaBounds)

	addr := &models.Address{Lat: 17.4065, Lng: 78.4772, CoordsSource: models.CoordsSaved}
	p, src, err := r.ResolveCoordinates(context.Background(), addr)
	if err != nil {
		t.Fatalf("ResolveCoordinates error: %v", err)
	}
	if src != models.CoordsSaved {
		t.Errorf("source = %s; want saved", src)
	}
	if p.Lat != 17.4065 {
		t.Errorf("coords = %+v", p)
	}
}

func TestResolveCoordinatesIgnoresZeroSaved(t *testing.T) {
	r := newTestResolver(`[{"lat":"17.4065","lon":"78.4772"}]`, `[]`)
	addr := &models.Address{Lat: 0, Lng: 0, CoordsSource: models.CoordsSaved, Line: "x", Pincode: "500001"}
	p, src, err := r.ResolveCoordinates(context.Background(), addr)
	if err != nil {
		t.Fatalf("ResolveCoordinates error: %v", err)
	}
	if src != models.CoordsGeocoded {
		t.Errorf("source = %s; want geocoded", src)
	}
	if p.IsZero() {
		t.Error("resolver returned the 0,0 placeholder")
	}
}

func TestResolveCoordinatesNeverFabricates(t *testing.T) {
	r := newTestResolver(`[]`, `[]`)
	addr := &models.Address{CoordsSource: models.CoordsUnresolved, Line: "x", Pincode: "999999"}
	p, src, err := r.ResolveCoordinates(context.Background(), addr)
	if !errors.Is(err, models.ErrAddressUnresolved) {
		t.Fatalf("error = %v; want ErrAddressUnresolved", err)
	}
	if src != models.CoordsUnresolved {
		t.Errorf("source = %s; want unresolved", src)
	}
	if !p.IsZero() {
		t.Errorf("coords = %+v; want zero value with error", p)
	}
}
