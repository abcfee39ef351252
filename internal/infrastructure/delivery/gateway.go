package delivery

import (
	"context"
	"fmt"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/greentech-platform/api/internal/infrastructure/smtp"
	"github.com/greentech-platform/api/internal/infrastructure/sns"
)

// Gateway routes verification codes to the right channel: email goes out
// through SMTP, SMS through SNS. A nil sender means the channel is not
// configured in this deployment.
type Gateway struct {
	mailer      smtp.Mailer
	sms         sns.SMSSender
	frontendURL string
}

func NewGateway(mailer smtp.Mailer, sms sns.SMSSender, frontendURL string) *Gateway {
	return &Gateway{mailer: mailer, sms: sms, frontendURL: frontendURL}
}

func (g *Gateway) Send(ctx context.Context, identifier string, ch domain.Channel, code string, p domain.Purpose) error {
	switch ch {
	case domain.ChannelEmail:
		if g.mailer == nil {
			return fmt.Errorf("%w: email delivery not configured", domain.ErrDeliveryFailed)
		}
		subject, body := emailContent(code, p, g.frontendURL)
		return g.mailer.SendEmail(identifier, subject, body)
	case domain.ChannelSMS:
		if g.sms == nil {
			return fmt.Errorf("%w: sms delivery not configured", domain.ErrDeliveryFailed)
		}
		return g.sms.SendSMS(ctx, identifier, smsContent(code, p))
	default:
		return fmt.Errorf("%w: unsupported channel %q", domain.ErrBadRequest, ch)
	}
}

func emailContent(code string, p domain.Purpose, frontendURL string) (subject, body string) {
	action := purposeAction(p)
	subject = fmt.Sprintf("GreenTech Platform - %s verification code", action)
	body = fmt.Sprintf(
		"Your verification code to %s is: %s\r\n\r\nThe code expires in 5 minutes. If you did not request it, ignore this email.",
		action, code)
	if frontendURL != "" {
		body += fmt.Sprintf("\r\n\r\nContinue at %s", frontendURL)
	}
	return subject, body
}

func smsContent(code string, p domain.Purpose) string {
	return fmt.Sprintf("[GreenTech] %s is your code to %s. Valid for 5 minutes.", code, purposeAction(p))
}

func purposeAction(p domain.Purpose) string {
	switch p {
	case domain.PurposeRegister:
		return "register"
	case domain.PurposeLogin:
		return "sign in"
	case domain.PurposeForgotPassword, domain.PurposeResetPassword:
		return "reset your password"
	case domain.PurposeChangeEmail:
		return "change your email"
	case domain.PurposeChangePhone:
		return "change your phone number"
	default:
		return "verify your account"
	}
}
