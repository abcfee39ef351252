package domain

// Reference data for company-profile forms. Read-only after seeding.

type Country struct {
	Code string `json:"code" dynamodbav:"code"`
	Name string `json:"name" dynamodbav:"name"`
}

type Province struct {
	Code        string `json:"code" dynamodbav:"code"`
	CountryCode string `json:"country_code" dynamodbav:"country_code"`
	Name        string `json:"name" dynamodbav:"name"`
}

type EconomicZone struct {
	Code         string `json:"code" dynamodbav:"code"`
	ProvinceCode string `json:"province_code" dynamodbav:"province_code"`
	Name         string `json:"name" dynamodbav:"name"`
}
