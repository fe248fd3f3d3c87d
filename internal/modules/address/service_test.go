package address

import (
	"context"
	"errors"
	"testing"

	"cs-store-backend/internal/models"
)

type fakeRepo struct {
	byID map[string]*models.Address
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*models.Address)}
}

func (f *fakeRepo) FindByID(ctx context.Context, userID, id string) (*models.Address, error) {
	a, ok := f.byID[id]
	if !ok || a.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) FindDefault(ctx context.Context, userID string) (*models.Address, error) {
	for _, a := range f.byID {
		if a.UserID == userID && a.IsDefault {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, userID string) ([]*models.Address, error) {
	var out []*models.Address
	for _, a := range f.byID {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) Save(ctx context.Context, addr *models.Address) error {
	if addr.IsDefault {
		for _, a := range f.byID {
			if a.UserID == addr.UserID && a.ID != addr.ID {
				a.IsDefault = false
			}
		}
	}
	cp := *addr
	f.byID[addr.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, id string) error {
	if _, ok := f.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeDistricts struct{ deliverable bool }

func (f *fakeDistricts) Resolve(ctx context.Context, pincode string) (*models.District, error) {
	if len(pincode) != 6 {
		return nil, models.ErrInvalidPincode
	}
	if pincode == "999999" {
		return nil, models.ErrPincodeNotFound
	}
	return &models.District{
		Pincode:        pincode,
		State:          "Telangana",
		PostalDistrict: "Hyderabad South East",
		AdminDistrict:  "Hyderabad",
		Deliverable:    f.deliverable,
	}, nil
}

type fakeGeocoder struct {
	coords models.LatLng
	source models.CoordsSource
	fail   bool
}

func (f *fakeGeocoder) SmartGeocode(ctx context.Context, line, city, state, pincode string) (models.LatLng, models.CoordsSource, error) {
	if f.fail {
		return models.LatLng{}, models.CoordsUnresolved, models.ErrAddressUnresolved
	}
	return f.coords, f.source, nil
}

func (f *fakeGeocoder) GeocodeByPincode(ctx context.Context, pincode string) (models.LatLng, error) {
	if f.fail {
		return models.LatLng{}, models.ErrAddressUnresolved
	}
	return f.coords, nil
}

func (f *fakeGeocoder) ResolveCoordinates(ctx context.Context, addr *models.Address) (models.LatLng, models.CoordsSource, error) {
	return f.SmartGeocode(ctx, addr.Line, addr.City, addr.State, addr.Pincode)
}

var saveReq = models.SaveAddressRequest{
	Name:    "Charan",
	Phone:   "9876543210",
	Line:    "8-2-293/82, Road No 12, Banjara Hills",
	City:    "Hyderabad",
	State:   "Telangana",
	Pincode: "500034",
}

func TestSaveGeocodesAndResolvesDistrict(t *testing.T) {
	repo := newFakeRepo()
	geocoder := &fakeGeocoder{coords: models.LatLng{Lat: 17.41, Lng: 78.43}, source: models.CoordsGeocoded}
	svc := NewService(repo, &fakeDistricts{deliverable: true}, geocoder)

	addr, err := svc.Save(context.Background(), "u1", "", saveReq)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if addr.CoordsSource != models.CoordsGeocoded {
		t.Errorf("CoordsSource = %s; want geocoded", addr.CoordsSource)
	}
	if addr.Lat != 17.41 {
		t.Errorf("Lat = %v", addr.Lat)
	}
	if addr.AdminDistrict != "Hyderabad" {
		t.Errorf("AdminDistrict = %q; want override applied", addr.AdminDistrict)
	}
	// The first address becomes the default even without the flag.
	if !addr.IsDefault {
		t.Error("first address should be default")
	}
}

func TestSaveRejectsUnresolvedAddress(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeDistricts{deliverable: true}, &fakeGeocoder{fail: true})

	_, err := svc.Save(context.Background(), "u1", "", saveReq)
	var re *models.ReasonError
	if !errors.As(err, &re) || re.Code != models.ReasonAddressUnresolved {
		t.Fatalf("error = %v; want address_unresolved reason", err)
	}
	if len(repo.byID) != 0 {
		t.Error("unresolved address must not be persisted")
	}
}

func TestSaveKeepsSingleDefault(t *testing.T) {
	repo := newFakeRepo()
	geocoder := &fakeGeocoder{coords: models.LatLng{Lat: 17.41, Lng: 78.43}, source: models.CoordsGeocoded}
	svc := NewService(repo, &fakeDistricts{deliverable: true}, geocoder)
	ctx := context.Background()

	first, err := svc.Save(ctx, "u1", "", saveReq)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	second := saveReq
	second.IsDefault = true
	if _, err := svc.Save(ctx, "u1", "", second); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	defaults := 0
	for _, a := range repo.byID {
		if a.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d; want exactly 1", defaults)
	}
	if repo.byID[first.ID].IsDefault {
		t.Error("old default not cleared")
	}
}

func TestSaveBadPincode(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeDistricts{}, &fakeGeocoder{})

	bad := saveReq
	bad.Pincode = "999999"
	_, err := svc.Save(context.Background(), "u1", "", bad)
	var re *models.ReasonError
	if !errors.As(err, &re) || re.Code != models.ReasonPincodeNotFound {
		t.Fatalf("error = %v; want pincode_not_found reason", err)
	}
}
