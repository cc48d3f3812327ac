// Package usecase implements the business logic for the company feature.
package usecase

import (
	"context"

	"broker_backend/internal/feature/company/domain/entity"
)

// ListFilter narrows and orders a company listing.
// Pointer fields are ignored when nil.
type ListFilter struct {
	// Name and Currency match by substring.
	Name     string
	Currency string

	// Price filters. When Price is combined with a bound, the exact match
	// wins; otherwise PriceGT takes precedence over PriceLT.
	Price   *float64
	PriceGT *float64
	PriceLT *float64

	// Available-share filters with the same precedence rules as price.
	Available   *int64
	AvailableGT *int64
	AvailableLT *int64

	// SortPrice and SortUpdated are "asc" or "desc"; empty means unsorted.
	SortPrice   string
	SortUpdated string
}

// CompanyPatch carries the fields of a partial update. Nil fields are left
// unchanged.
type CompanyPatch struct {
	Name            *string
	Symbol          *string
	Currency        *string
	Price           *float64
	AvailableShares *int64
}

// CompanyRepository abstracts the persistence layer for company entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CompanyRepository interface {
	// Create persists a new company. It returns ErrCompanyAlreadyExists when
	// the name or symbol is already taken.
	Create(ctx context.Context, c *entity.Company) error

	// FindByID retrieves a company by ID, or ErrCompanyNotFound.
	FindByID(ctx context.Context, id uint) (*entity.Company, error)

	// List returns the companies matching the filter.
	List(ctx context.Context, f ListFilter) ([]entity.Company, error)

	// Update persists the mutable fields of an existing company.
	Update(ctx context.Context, c *entity.Company) error

	// Patch applies the non-nil fields of the patch and returns the updated
	// company, or ErrCompanyNotFound.
	Patch(ctx context.Context, id uint, patch CompanyPatch) (*entity.Company, error)

	// Delete removes the company and all positions referencing it in one
	// atomic unit, or ErrCompanyNotFound. No orphan position survives.
	Delete(ctx context.Context, id uint) error
}

// CurrencyConverter converts an amount between two currencies using the
// current exchange rates. Implemented by the rates feature.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// CompanyUsecase provides business logic for company operations.
type CompanyUsecase struct {
	companies CompanyRepository
	converter CurrencyConverter
}

// NewCompanyUsecase creates a new CompanyUsecase with the given repository
// and currency converter.
func NewCompanyUsecase(companies CompanyRepository, converter CurrencyConverter) *CompanyUsecase {
	return &CompanyUsecase{companies: companies, converter: converter}
}

// CreateCompany lists a new company with its initial share inventory.
func (u *CompanyUsecase) CreateCompany(ctx context.Context, c *entity.Company) error {
	return u.companies.Create(ctx, c)
}

// GetCompany returns the company by ID. When currency is non-empty the
// returned copy is quoted in that currency: the price is converted with the
// current exchange rates and the currency field is rewritten. The conversion
// is a derived read-only view; the stored price is untouched.
func (u *CompanyUsecase) GetCompany(ctx context.Context, id uint, currency string) (*entity.Company, error) {
	c, err := u.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if currency == "" || currency == c.Currency {
		return c, nil
	}

	converted, err := u.converter.Convert(ctx, c.Price, c.Currency, currency)
	if err != nil {
		return nil, err
	}
	quoted := *c
	quoted.Currency = currency
	quoted.Price = converted
	return &quoted, nil
}

// ListCompanies returns the companies matching the filter.
func (u *CompanyUsecase) ListCompanies(ctx context.Context, f ListFilter) ([]entity.Company, error) {
	return u.companies.List(ctx, f)
}

// UpdateCompany replaces the mutable fields of a company (PUT semantics).
// The quote currency and the timestamps are preserved; UpdatedAt advances
// through the store.
func (u *CompanyUsecase) UpdateCompany(ctx context.Context, id uint, name, symbol string, price float64, availableShares int64) (*entity.Company, error) {
	c, err := u.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Skip the write when nothing changed.
	if c.Name == name && c.Symbol == symbol && c.Price == price && c.AvailableShares == availableShares {
		return c, nil
	}

	c.Name = name
	c.Symbol = symbol
	c.Price = price
	c.AvailableShares = availableShares
	if err := u.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// PatchCompany applies a partial update and returns the updated company.
func (u *CompanyUsecase) PatchCompany(ctx context.Context, id uint, patch CompanyPatch) (*entity.Company, error) {
	return u.companies.Patch(ctx, id, patch)
}

// DeleteCompany removes the company together with every position held in it.
func (u *CompanyUsecase) DeleteCompany(ctx context.Context, id uint) error {
	return u.companies.Delete(ctx, id)
}
