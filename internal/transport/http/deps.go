package http

import (
	"github.com/greentech-platform/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/greentech-platform/api/internal/infrastructure/jwt"
	s3infra "github.com/greentech-platform/api/internal/infrastructure/s3"
	"github.com/greentech-platform/api/internal/infrastructure/smtp"
	"github.com/greentech-platform/api/internal/infrastructure/sns"
	"github.com/greentech-platform/api/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo      *dynamo.UserRepo
	CodeRepo      *dynamo.CodeRepo
	CompanyRepo   *dynamo.CompanyRepo
	ReferenceRepo *dynamo.ReferenceRepo
	S3Store       *s3infra.Store
	Mailer        smtp.Mailer
	SMSSender     sns.SMSSender
	JWTProvider   *jwtinfra.Provider
	Clock         clock.Clock
}
