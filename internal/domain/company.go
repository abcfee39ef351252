package domain

import (
	"fmt"
	"strings"
	"time"
)

// RequirementType is what a company wants out of the platform.
type RequirementType string

const (
	RequirementPublishTechnology RequirementType = "PUBLISH_TECHNOLOGY"
	RequirementFindTechnology    RequirementType = "FIND_TECHNOLOGY"
	RequirementIndustryInsights  RequirementType = "INDUSTRY_INSIGHTS"
)

// ParseRequirementType converts a request payload value into a RequirementType.
func ParseRequirementType(s string) (RequirementType, error) {
	switch r := RequirementType(strings.ToUpper(s)); r {
	case RequirementPublishTechnology, RequirementFindTechnology, RequirementIndustryInsights:
		return r, nil
	default:
		return "", fmt.Errorf("unknown requirement type %q: %w", s, ErrBadRequest)
	}
}

// ProfileStatus is the review state of a submitted company profile.
type ProfileStatus string

const (
	ProfilePendingReview ProfileStatus = "PENDING_REVIEW"
	ProfileApproved      ProfileStatus = "APPROVED"
	ProfileRejected      ProfileStatus = "REJECTED"
	ProfileIncomplete    ProfileStatus = "INCOMPLETE"
)

// CompanyProfile is a company's self-submitted profile. One per user.
type CompanyProfile struct {
	UserID           string          `json:"user_id" dynamodbav:"user_id"`
	CompanyName      string          `json:"company_name" dynamodbav:"company_name"`
	Requirement      RequirementType `json:"requirement" dynamodbav:"requirement"`
	LogoURL          string          `json:"logo_url,omitempty" dynamodbav:"logo_url"`
	CountryCode      string          `json:"country_code" dynamodbav:"country_code"`
	ProvinceCode     string          `json:"province_code,omitempty" dynamodbav:"province_code"`
	EconomicZoneCode string          `json:"economic_zone_code,omitempty" dynamodbav:"economic_zone_code"`
	Status           ProfileStatus   `json:"status" dynamodbav:"status"`
	CreatedAt        time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time       `json:"updated" dynamodbav:"updated_at"`
}

type SubmitProfileRequest struct {
	CompanyName      string `json:"company_name" validate:"required,max=200"`
	Requirement      string `json:"requirement" validate:"required"`
	CountryCode      string `json:"country_code" validate:"required"`
	ProvinceCode     string `json:"province_code"`
	EconomicZoneCode string `json:"economic_zone_code"`
}

type UpdateProfileRequest struct {
	CompanyName      *string `json:"company_name" validate:"omitempty,max=200"`
	Requirement      *string `json:"requirement"`
	CountryCode      *string `json:"country_code"`
	ProvinceCode     *string `json:"province_code"`
	EconomicZoneCode *string `json:"economic_zone_code"`
}
