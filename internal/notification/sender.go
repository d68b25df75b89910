// Package notification delivers transactional email. The provider is picked
// by MAIL_PROVIDER: resend, smtp, or log for local development.
package notification

import (
	"FitTrack/internal/config"
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

func NewSender(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	logger = logger.Named("mail")
	switch cfg.Mail.Provider {
	case config.MailProviderResend:
		logger.Info("using resend mail provider")
		return NewResendSender(resend.NewClient(cfg.Resend.APIKey), cfg.Mail.From), nil
	case config.MailProviderSMTP:
		logger.Info("using smtp mail provider", zap.String("host", cfg.SMTP.Host), zap.Int("port", cfg.SMTP.Port))
		dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		return NewSMTPSender(dialer, cfg.Mail.From), nil
	case config.MailProviderLog:
		logger.Warn("using log mail provider, emails are not delivered")
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}
