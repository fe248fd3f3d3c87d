package address

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/district"
	"cs-store-backend/internal/modules/geo"

	"github.com/google/uuid"
)

// ServiceInterface is the address book surface.
type ServiceInterface interface {
	List(ctx context.Context, userID string) ([]*models.Address, error)
	Save(ctx context.Context, userID, addressID string, req models.SaveAddressRequest) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID string) error
}

type service struct {
	repo      RepositoryInterface
	districts district.ResolverInterface
	geocoder  geo.ResolverInterface
}

func NewService(repo RepositoryInterface, districts district.ResolverInterface, geocoder geo.ResolverInterface) ServiceInterface {
	return &service{repo: repo, districts: districts, geocoder: geocoder}
}

func (s *service) List(ctx context.Context, userID string) ([]*models.Address, error) {
	return s.repo.List(ctx, userID)
}

// Save resolves the pincode and geocodes the address before persisting.
// Geocoding failure is returned to the caller; zero or placeholder
// coordinates are never written.
func (s *service) Save(ctx context.Context, userID, addressID string, req models.SaveAddressRequest) (*models.Address, error) {
	d, err := s.districts.Resolve(ctx, req.Pincode)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidPincode):
			return nil, models.NewReasonError(models.ReasonInvalidPincode, "pincode must be 6 digits", err)
		case errors.Is(err, models.ErrPincodeNotFound):
			return nil, models.NewReasonError(models.ReasonPincodeNotFound, "pincode not found", err)
		}
		return nil, fmt.Errorf("service.Save: resolve pincode: %w", err)
	}

	coords, source, err := s.geocoder.SmartGeocode(ctx, req.Line, req.City, req.State, req.Pincode)
	if err != nil {
		return nil, models.NewReasonError(models.ReasonAddressUnresolved,
			"we could not locate this address, please check the street and pincode", err)
	}

	if addressID == "" {
		addressID = uuid.NewString()
	} else if _, err := s.repo.FindByID(ctx, userID, addressID); err != nil {
		return nil, fmt.Errorf("service.Save: %w", err)
	}

	// First address of an account becomes the default regardless of the flag.
	isDefault := req.IsDefault
	if _, err := s.repo.FindDefault(ctx, userID); errors.Is(err, models.ErrNotFound) {
		isDefault = true
	}

	addr := &models.Address{
		ID:             addressID,
		UserID:         userID,
		Name:           req.Name,
		Phone:          req.Phone,
		Line:           req.Line,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		PostalDistrict: d.PostalDistrict,
		AdminDistrict:  d.AdminDistrict,
		Lat:            coords.Lat,
		Lng:            coords.Lng,
		CoordsSource:   source,
		IsDefault:      isDefault,
	}
	if err := s.repo.Save(ctx, addr); err != nil {
		return nil, fmt.Errorf("service.Save: %w", err)
	}
	return addr, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID string) error {
	return s.repo.Delete(ctx, userID, addressID)
}
