package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/geocode"
	"github.com/dhobigo/internal/repository"

	"gorm.io/gorm"
)

func newAddressServiceForTest(t *testing.T, db *gorm.DB, geocoder *geocode.Client) *AddressService {
	t.Helper()
	return NewAddressService(repository.NewAddressRepository(db), geocoder)
}

func TestAddressCreate(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newAddressServiceForTest(t, db, nil)
	user := createTestUser(t, db, "9000008001")

	_, err := svc.Create(context.Background(), user.ID, AddressInput{Label: "Home", Line1: "42 MG Road"})
	if !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("incomplete input want ErrAddressIncomplete, got %v", err)
	}

	first, err := svc.Create(context.Background(), user.ID, AddressInput{
		Label:     "Home",
		Line1:     " 42 MG Road ",
		City:      "Bengaluru",
		Pincode:   "560001",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Line1 != "42 MG Road" {
		t.Fatalf("line1 want trimmed got %q", first.Line1)
	}
	if !first.IsDefault {
		t.Fatalf("first address want default")
	}
	if first.Geocoded {
		t.Fatalf("geocoded want false without geocoder")
	}

	// 新默认地址接管默认标记
	second, err := svc.Create(context.Background(), user.ID, AddressInput{
		Label:     "Work",
		Line1:     "1 Residency Road",
		City:      "Bengaluru",
		Pincode:   "560025",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}
	if !second.IsDefault {
		t.Fatalf("second address want default")
	}
	addresses, err := svc.List(user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	defaults := 0
	for _, address := range addresses {
		if address.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("default addresses want 1 got %d", defaults)
	}
}

func TestAddressCreateWithGeocoding(t *testing.T) {
	db := openServiceTestDB(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"formatted":"42 MG Road, Bengaluru","geometry":{"lat":12.9753,"lng":77.6069}}]}`))
	}))
	defer server.Close()
	geocoder := geocode.NewClient(config.GeocodingConfig{Enabled: true, Endpoint: server.URL, APIKey: "test-key"})
	svc := newAddressServiceForTest(t, db, geocoder)
	user := createTestUser(t, db, "9000008002")

	address, err := svc.Create(context.Background(), user.ID, AddressInput{
		Line1:   "42 MG Road",
		City:    "Bengaluru",
		Pincode: "560001",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !address.Geocoded || address.Latitude == nil || address.Longitude == nil {
		t.Fatalf("expected geocoded coordinates, got %+v", address)
	}
	if *address.Latitude != 12.9753 {
		t.Fatalf("latitude want 12.9753 got %v", *address.Latitude)
	}
}

func TestAddressGeocodeFailureDoesNotBlock(t *testing.T) {
	db := openServiceTestDB(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	geocoder := geocode.NewClient(config.GeocodingConfig{Enabled: true, Endpoint: server.URL, APIKey: "test-key"})
	svc := newAddressServiceForTest(t, db, geocoder)
	user := createTestUser(t, db, "9000008003")

	address, err := svc.Create(context.Background(), user.ID, AddressInput{
		Line1:   "42 MG Road",
		City:    "Bengaluru",
		Pincode: "560001",
	})
	if err != nil {
		t.Fatalf("create should succeed despite geocode failure: %v", err)
	}
	if address.Geocoded || address.Latitude != nil {
		t.Fatalf("coordinates should stay empty on failure, got %+v", address)
	}
}

func TestAddressUpdateAndDelete(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newAddressServiceForTest(t, db, nil)
	user := createTestUser(t, db, "9000008004")
	other := createTestUser(t, db, "9000008005")

	address, err := svc.Create(context.Background(), user.ID, AddressInput{
		Line1:   "42 MG Road",
		City:    "Bengaluru",
		Pincode: "560001",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), address.ID, user.ID, AddressInput{
		Label:   "Home",
		Line1:   "44 MG Road",
		City:    "Bengaluru",
		Pincode: "560001",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Line1 != "44 MG Road" || updated.Label != "Home" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// 他人地址不可改不可删
	if _, err := svc.Update(context.Background(), address.ID, other.ID, AddressInput{
		Line1: "x", City: "y", Pincode: "560001",
	}); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("foreign update want ErrAddressNotFound, got %v", err)
	}
	if err := svc.Delete(address.ID, other.ID); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("foreign delete want ErrAddressNotFound, got %v", err)
	}

	if err := svc.Delete(address.ID, user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	addresses, err := svc.List(user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(addresses) != 0 {
		t.Fatalf("addresses want empty after delete, got %d", len(addresses))
	}
}
