package company

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/greentech-platform/api/internal/pkg/clock"
)

// profileStore is the subset of the company repository the service needs.
type profileStore interface {
	Create(ctx context.Context, p *domain.CompanyProfile) error
	Get(ctx context.Context, userID string) (*domain.CompanyProfile, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// referenceStore validates location codes against the reference tables.
type referenceStore interface {
	GetCountry(ctx context.Context, code string) (*domain.Country, error)
	GetProvince(ctx context.Context, code string) (*domain.Province, error)
	GetEconomicZone(ctx context.Context, code string) (*domain.EconomicZone, error)
}

// logoStore persists uploaded logo files.
type logoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type Service interface {
	Submit(ctx context.Context, userID string, req domain.SubmitProfileRequest) (*domain.CompanyProfile, error)
	Get(ctx context.Context, userID string) (*domain.CompanyProfile, error)
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.CompanyProfile, error)
	UploadLogo(ctx context.Context, userID, filename string, r io.Reader, contentType string) (string, error)
}

type service struct {
	profiles profileStore
	refs     referenceStore
	logos    logoStore
	clk      clock.Clock
}

func NewService(profiles profileStore, refs referenceStore, logos logoStore, clk clock.Clock) Service {
	return &service{profiles: profiles, refs: refs, logos: logos, clk: clk}
}

// Submit creates the profile for a user. One profile per user; a second
// submit returns a conflict.
func (s *service) Submit(ctx context.Context, userID string, req domain.SubmitProfileRequest) (*domain.CompanyProfile, error) {
	requirement, err := domain.ParseRequirementType(req.Requirement)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, req.CountryCode, req.ProvinceCode, req.EconomicZoneCode); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	p := &domain.CompanyProfile{
		UserID:           userID,
		CompanyName:      req.CompanyName,
		Requirement:      requirement,
		CountryCode:      strings.ToUpper(req.CountryCode),
		ProvinceCode:     strings.ToUpper(req.ProvinceCode),
		EconomicZoneCode: strings.ToUpper(req.EconomicZoneCode),
		Status:           domain.ProfilePendingReview,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("company profile submitted", "user_id", userID, "requirement", requirement)
	return p, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.CompanyProfile, error) {
	return s.profiles.Get(ctx, userID)
}

// Update applies the non-nil fields of req to an existing profile. Any
// change sends the profile back to review.
func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.CompanyProfile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		p.CompanyName = *req.CompanyName
		updates["company_name"] = p.CompanyName
	}
	if req.Requirement != nil {
		requirement, err := domain.ParseRequirementType(*req.Requirement)
		if err != nil {
			return nil, err
		}
		p.Requirement = requirement
		updates["requirement"] = string(requirement)
	}
	if req.CountryCode != nil {
		p.CountryCode = strings.ToUpper(*req.CountryCode)
		updates["country_code"] = p.CountryCode
	}
	if req.ProvinceCode != nil {
		p.ProvinceCode = strings.ToUpper(*req.ProvinceCode)
		updates["province_code"] = p.ProvinceCode
	}
	if req.EconomicZoneCode != nil {
		p.EconomicZoneCode = strings.ToUpper(*req.EconomicZoneCode)
		updates["economic_zone_code"] = p.EconomicZoneCode
	}
	if len(updates) == 0 {
		return p, nil
	}

	if req.CountryCode != nil || req.ProvinceCode != nil || req.EconomicZoneCode != nil {
		if err := s.checkLocation(ctx, p.CountryCode, p.ProvinceCode, p.EconomicZoneCode); err != nil {
			return nil, err
		}
	}

	p.Status = domain.ProfilePendingReview
	updates["status"] = string(p.Status)
	if err := s.profiles.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadLogo stores the logo file and records its URL on the profile.
func (s *service) UploadLogo(ctx context.Context, userID, filename string, r io.Reader, contentType string) (string, error) {
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("company-logos/%s%s", userID, strings.ToLower(path.Ext(filename)))
	url, err := s.logos.Upload(ctx, key, r, contentType)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}

	if err := s.profiles.Update(ctx, userID, map[string]interface{}{
		"logo_url": url,
	}); err != nil {
		return "", err
	}
	return url, nil
}

// checkLocation verifies each provided code exists and belongs to its parent.
// Province and economic zone are optional.
func (s *service) checkLocation(ctx context.Context, countryCode, provinceCode, zoneCode string) error {
	countryCode = strings.ToUpper(countryCode)
	if _, err := s.refs.GetCountry(ctx, countryCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown country %q: %w", countryCode, domain.ErrBadRequest)
		}
		return err
	}

	var province *domain.Province
	if provinceCode != "" {
		provinceCode = strings.ToUpper(provinceCode)
		p, err := s.refs.GetProvince(ctx, provinceCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unknown province %q: %w", provinceCode, domain.ErrBadRequest)
			}
			return err
		}
		if p.CountryCode != countryCode {
			return fmt.Errorf("province %q is not in country %q: %w", provinceCode, countryCode, domain.ErrBadRequest)
		}
		province = p
	}

	if zoneCode != "" {
		zoneCode = strings.ToUpper(zoneCode)
		if province == nil {
			return fmt.Errorf("economic zone requires a province: %w", domain.ErrBadRequest)
		}
		z, err := s.refs.GetEconomicZone(ctx, zoneCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unknown economic zone %q: %w", zoneCode, domain.ErrBadRequest)
			}
			return err
		}
		if z.ProvinceCode != province.Code {
			return fmt.Errorf("economic zone %q is not in province %q: %w", zoneCode, province.Code, domain.ErrBadRequest)
		}
	}
	return nil
}
