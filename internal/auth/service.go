package auth

import (
	"FitTrack/internal/config"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	RedirectCompleteProfile = "/complete-profile"
	RedirectResetPassword   = "/reset-password"
)

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	SetVerified(ctx context.Context, email string) (*User, error)
	SetPasswordHash(ctx context.Context, email, hash string) (*User, error)
}

type CodeStore interface {
	Issue(ctx context.Context, email string, purpose Purpose) (string, error)
	Consume(ctx context.Context, email, code string, purpose Purpose) error
	ExchangeForTicket(ctx context.Context, email, code, ticketHash string, ttl time.Duration) error
	ConsumeTicket(ctx context.Context, email, ticketHash string) error
}

// CodeNotifier delivers a one-time code to its owner.
type CodeNotifier interface {
	SendCode(ctx context.Context, to string, purpose Purpose, code string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type SessionMinter interface {
	Issue(user *User) (*Session, error)
}

// Service runs the signup, verification, login and password reset flows.
type Service struct {
	users     CredentialStore
	codes     CodeStore
	notifier  CodeNotifier
	hasher    PasswordHasher
	sessions  SessionMinter
	ticketTTL time.Duration
	logger    *zap.Logger
}

func NewService(users CredentialStore, codes CodeStore, notifier CodeNotifier, hasher PasswordHasher, sessions SessionMinter, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		codes:     codes,
		notifier:  notifier,
		hasher:    hasher,
		sessions:  sessions,
		ticketTTL: cfg.ResetTicketTTL,
		logger:    logger.Named("auth"),
	}
}

// Signup creates an unverified user, mails a signup code and returns a
// session right away so the client can continue into profile completion.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.issueAndSend(ctx, email, PurposeSignup); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("email", email), zap.String("user_id", user.ID.Hex()))
	return s.sessions.Issue(user)
}

// Login checks the password before the verification flag so an unverified
// account is only reported to someone who knows its password.
func (s *Service) Login(ctx context.Context, cred Credential) (*Session, error) {
	email, err := normalizeEmail(cred.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, cred.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	return s.sessions.Issue(user)
}

// VerifyOTP consumes a code. A signup code verifies the user and yields a
// session; a reset code is exchanged for a single-use reset ticket.
func (s *Service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidOrExpired
	}
	if req.OTP == "" {
		return nil, ErrInvalidOrExpired
	}

	if req.IsPasswordReset {
		ticket, err := newResetTicket()
		if err != nil {
			return nil, err
		}
		if err := s.codes.ExchangeForTicket(ctx, email, req.OTP, hashTicket(ticket), s.ticketTTL); err != nil {
			return nil, err
		}
		return &VerifyResult{RedirectTo: RedirectResetPassword, ResetToken: ticket}, nil
	}

	if err := s.codes.Consume(ctx, email, req.OTP, PurposeSignup); err != nil {
		return nil, err
	}
	user, err := s.users.SetVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("email verified", zap.String("email", email))
	return &VerifyResult{RedirectTo: RedirectCompleteProfile, Session: session}, nil
}

// ResendOTP replaces any outstanding code for the user with a new one.
func (s *Service) ResendOTP(ctx context.Context, req ResendOTPRequest) error {
	purpose := PurposeSignup
	if req.IsPasswordReset {
		purpose = PurposePasswordReset
	}
	return s.requestCode(ctx, req.Email, purpose)
}

func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	return s.requestCode(ctx, req.Email, PurposePasswordReset)
}

// ResetPassword spends the reset ticket, stores the new hash and signs the
// user in.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Session, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidOrExpired
	}
	if req.Token == "" {
		return nil, ErrInvalidOrExpired
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	// The ticket is spent before the write. If the write fails the user
	// starts over with forgot-password.
	if err := s.codes.ConsumeTicket(ctx, email, hashTicket(req.Token)); err != nil {
		return nil, err
	}
	user, err := s.users.SetPasswordHash(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	s.logger.Info("password reset", zap.String("email", email))
	return s.sessions.Issue(user)
}

// CurrentUser loads the user a verified session belongs to.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*User, error) {
	if claims == nil {
		return nil, ErrUnauthenticated
	}
	return s.users.FindByID(ctx, claims.ID)
}

func (s *Service) requestCode(ctx context.Context, rawEmail string, purpose Purpose) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return err
	}
	return s.issueAndSend(ctx, email, purpose)
}

// issueAndSend stores a new code and mails it. A failed delivery is logged
// and swallowed: the stored code stays valid and the user can ask again.
func (s *Service) issueAndSend(ctx context.Context, email string, purpose Purpose) error {
	code, err := s.codes.Issue(ctx, email, purpose)
	if err != nil {
		return err
	}
	if err := s.notifier.SendCode(ctx, email, purpose, code); err != nil {
		s.logger.Warn("code delivery failed",
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
	}
	return nil
}
