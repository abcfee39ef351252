package reference

import (
	"context"

	"github.com/greentech-platform/api/internal/domain"
)

// store is the reference repository surface the service needs.
type store interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	ListProvinces(ctx context.Context, countryCode string) ([]domain.Province, error)
	ListEconomicZones(ctx context.Context, provinceCode string) ([]domain.EconomicZone, error)
}

// Service lists the location reference data used by company profiles.
type Service interface {
	Countries(ctx context.Context) ([]domain.Country, error)
	Provinces(ctx context.Context, countryCode string) ([]domain.Province, error)
	EconomicZones(ctx context.Context, provinceCode string) ([]domain.EconomicZone, error)
}

type service struct {
	refs store
}

func NewService(refs store) Service {
	return &service{refs: refs}
}

func (s *service) Countries(ctx context.Context) ([]domain.Country, error) {
	return s.refs.ListCountries(ctx)
}

func (s *service) Provinces(ctx context.Context, countryCode string) ([]domain.Province, error) {
	return s.refs.ListProvinces(ctx, countryCode)
}

func (s *service) EconomicZones(ctx context.Context, provinceCode string) ([]domain.EconomicZone, error) {
	return s.refs.ListEconomicZones(ctx, provinceCode)
}
