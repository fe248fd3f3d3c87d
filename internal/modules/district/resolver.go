// Package district resolves 6-digit postal codes to state, postal district
// and administrative district, and answers serviceability.
package district

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"cs-store-backend/internal/models"
)

// ResolverInterface is the lookup contract consumed by address saving, fee
// previews and order placement.
type ResolverInterface interface {
	Resolve(ctx context.Context, pincode string) (*models.District, error)
}

// FallbackStoreInterface is the persisted secondary source, consulted only
// when the bulk dataset has no entry for a code.
type FallbackStoreInterface interface {
	FindByPincode(ctx context.Context, pincode string) (*models.District, error)
}

type resolver struct {
	datasetPath       string
	fallback          FallbackStoreInterface
	overrides         map[string]map[string]string
	serviceableStates map[string]struct{}

	once    sync.Once
	loadErr error
	index   map[string]*datasetEntry
}

type datasetEntry struct {
	state          string
	postalDistrict string
	cities         []string
}

// NewResolver builds a resolver over the bulk CSV dataset at datasetPath.
// The index is built lazily on first lookup and lives for the process.
func NewResolver(datasetPath string, fallback FallbackStoreInterface, overrides map[string]map[string]string, serviceableStates []string) ResolverInterface {
	states := make(map[string]struct{}, len(serviceableStates))
	for _, s := range serviceableStates {
		states[strings.ToLower(s)] = struct{}{}
	}
	return &resolver{
		datasetPath:       datasetPath,
		fallback:          fallback,
		overrides:         overrides,
		serviceableStates: states,
	}
}

// IsValidPincode reports whether s is exactly 6 ASCII digits.
func IsValidPincode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (r *resolver) Resolve(ctx context.Context, pincode string) (*models.District, error) {
	if !IsValidPincode(pincode) {
		return nil, models.ErrInvalidPincode
	}

	r.once.Do(r.buildIndex)
	if r.loadErr != nil {
		return nil, fmt.Errorf("district.Resolve: dataset: %w", r.loadErr)
	}

	if e, ok := r.index[pincode]; ok {
		return r.toDistrict(pincode, e.state, e.postalDistrict, e.cities), nil
	}

	if r.fallback != nil {
		d, err := r.fallback.FindByPincode(ctx, pincode)
		if err == nil {
			// Reapply overrides and serviceability; the store keeps raw rows.
			return r.toDistrict(d.Pincode, d.State, d.PostalDistrict, d.Cities), nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("district.Resolve: fallback store: %w", err)
		}
	}
	return nil, models.ErrPincodeNotFound
}

// toDistrict applies the override table and the serviceable-state check.
// Override application is total: a postal district either passes through
// unchanged or maps to exactly one admin district.
func (r *resolver) toDistrict(pincode, state, postalDistrict string, cities []string) *models.District {
	admin := postalDistrict
	if byState, ok := r.overrides[state]; ok {
		if mapped, ok := byState[postalDistrict]; ok {
			admin = mapped
		}
	}
	_, deliverable := r.serviceableStates[strings.ToLower(state)]
	return &models.District{
		Pincode:        pincode,
		State:          state,
		PostalDistrict: postalDistrict,
		AdminDistrict:  admin,
		Cities:         cities,
		Deliverable:    deliverable,
	}
}

// buildIndex reads the CSV dataset (pincode,office,district,state) into the
// in-memory index. Offices sharing a pincode merge into one entry's cities.
func (r *resolver) buildIndex() {
	r.index = make(map[string]*datasetEntry)

	f, err := os.Open(r.datasetPath)
	if err != nil {
		r.loadErr = err
		return
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.loadErr = err
			return
		}
		if first {
			first = false
			if len(rec) > 0 && !IsValidPincode(strings.TrimSpace(rec[0])) {
				continue // header row
			}
		}
		if len(rec) < 4 {
			continue
		}
		pin := strings.TrimSpace(rec[0])
		if !IsValidPincode(pin) {
			continue
		}
		office := strings.TrimSpace(rec[1])
		dist := strings.TrimSpace(rec[2])
		state := strings.TrimSpace(rec[3])

		e, ok := r.index[pin]
		if !ok {
			e = &datasetEntry{state: state, postalDistrict: dist}
			r.index[pin] = e
		}
		if office != "" && !contains(e.cities, office) {
			e.cities = append(e.cities, office)
		}
	}
	for _, e := range r.index {
		sort.Strings(e.cities)
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
