package address

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cs-store-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// fakeService records the addressID the handler passed through, so the tests
// pin the route parameter name the router registers (:addressId).
type fakeService struct {
	savedID   string
	deletedID string
}

func (f *fakeService) List(ctx context.Context, userID string) ([]*models.Address, error) {
	return nil, nil
}

func (f *fakeService) Save(ctx context.Context, userID, addressID string, req models.SaveAddressRequest) (*models.Address, error) {
	f.savedID = addressID
	return &models.Address{ID: addressID, UserID: userID}, nil
}

func (f *fakeService) Delete(ctx context.Context, userID, addressID string) error {
	f.deletedID = addressID
	if addressID == "" {
		return models.ErrNotFound
	}
	return nil
}

const saveBody = `{"name":"Asha Rao","phone":"9876543210","line":"12 Jubilee Hills","city":"Hyderabad","state":"Telangana","pincode":"500001"}`

func newAddressContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", "user-1")
	c.SetParamNames("addressId")
	c.SetParamValues("addr-123")
	return c, rec
}

func TestUpdateReadsAddressIDFromRoute(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	c, rec := newAddressContext(http.MethodPut, saveBody)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if svc.savedID != "addr-123" {
		t.Fatalf("service received addressID %q, want %q", svc.savedID, "addr-123")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d (created-branch means the id was lost)", rec.Code, http.StatusOK)
	}
}

func TestDeleteReadsAddressIDFromRoute(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	c, rec := newAddressContext(http.MethodDelete, "")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if svc.deletedID != "addr-123" {
		t.Fatalf("service received addressID %q, want %q", svc.deletedID, "addr-123")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
