package notification

import (
	"FitTrack/internal/auth"
	"FitTrack/internal/config"
	"context"
	"fmt"
	"time"
)

// CodeMailer renders and sends one-time code emails.
type CodeMailer struct {
	sender Sender
	ttl    time.Duration
}

func NewCodeMailer(sender Sender, cfg *config.Config) *CodeMailer {
	return &CodeMailer{sender: sender, ttl: cfg.OTPTTL}
}

func (m *CodeMailer) SendCode(ctx context.Context, to string, purpose auth.Purpose, code string) error {
	subject, intro := "Verify your FitTrack account", "Use this code to verify your email address"
	if purpose == auth.PurposePasswordReset {
		subject, intro = "Reset your FitTrack password", "Use this code to reset your password"
	}
	body := fmt.Sprintf(
		"<p>%s:</p><h2 style=\"letter-spacing:4px\">%s</h2><p>The code expires in %d minutes. If you did not request it, ignore this email.</p>",
		intro, code, int(m.ttl.Minutes()),
	)
	return m.sender.Send(ctx, to, subject, body)
}
