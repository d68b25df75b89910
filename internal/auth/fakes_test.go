package auth

import (
	"FitTrack/internal/config"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryUsers mirrors UserRepository semantics over a map.
type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*User
	findErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) Create(_ context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, ErrAlreadyExists
	}
	u := &User{ID: primitive.NewObjectID(), Email: email, PasswordHash: passwordHash}
	m.byEmail[email] = u
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) SetVerified(_ context.Context, email string) (*User, error) {
	return m.mutate(email, func(u *User) { u.IsVerified = true })
}

func (m *memoryUsers) SetPasswordHash(_ context.Context, email, hash string) (*User, error) {
	return m.mutate(email, func(u *User) { u.PasswordHash = hash })
}

func (m *memoryUsers) mutate(email string, fn func(*User)) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	fn(u)
	cp := *u
	return &cp, nil
}

// memoryCodes mirrors CodeRepository: one document per email, live filter
// on email, code, purpose and expiry.
type memoryCodes struct {
	mu      sync.Mutex
	clock   *fakeClock
	ttl     time.Duration
	byEmail map[string]OneTimeCode
	issued  int
}

func newMemoryCodes(clock *fakeClock) *memoryCodes {
	return &memoryCodes{clock: clock, ttl: 10 * time.Minute, byEmail: map[string]OneTimeCode{}}
}

func (m *memoryCodes) Issue(_ context.Context, email string, purpose Purpose) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.byEmail[email] = OneTimeCode{Email: email, Code: code, Purpose: purpose, ExpiresAt: now.Add(m.ttl), CreatedAt: now}
	m.issued++
	return code, nil
}

func (m *memoryCodes) live(email, code string, purpose Purpose) bool {
	doc, ok := m.byEmail[email]
	return ok && doc.Code == code && doc.Purpose == purpose && m.clock.Now().Before(doc.ExpiresAt)
}

func (m *memoryCodes) Consume(_ context.Context, email, code string, purpose Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(email, code, purpose) {
		return ErrInvalidOrExpired
	}
	delete(m.byEmail, email)
	return nil
}

func (m *memoryCodes) ExchangeForTicket(_ context.Context, email, code, ticketHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(email, code, PurposePasswordReset) {
		return ErrInvalidOrExpired
	}
	now := m.clock.Now()
	m.byEmail[email] = OneTimeCode{Email: email, Code: ticketHash, Purpose: PurposeResetTicket, ExpiresAt: now.Add(ttl), CreatedAt: now}
	return nil
}

func (m *memoryCodes) ConsumeTicket(ctx context.Context, email, ticketHash string) error {
	return m.Consume(ctx, email, ticketHash, PurposeResetTicket)
}

func (m *memoryCodes) get(email string) (OneTimeCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.byEmail[email]
	return doc, ok
}

func (m *memoryCodes) count(email string) int {
	if _, ok := m.get(email); ok {
		return 1
	}
	return 0
}

type sentCode struct {
	to      string
	purpose Purpose
	code    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (n *recordingNotifier) SendCode(_ context.Context, to string, purpose Purpose, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentCode{to: to, purpose: purpose, code: code})
	return n.err
}

func (n *recordingNotifier) last() sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentCode{}
	}
	return n.sent[len(n.sent)-1]
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Time{}}
}

func (m *memoryRevocations) MarkRevoked(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "unit-test-secret",
		SessionTTL:     24 * time.Hour,
		OTPTTL:         10 * time.Minute,
		ResetTicketTTL: 10 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
	}
}

type fixture struct {
	clock       *fakeClock
	users       *memoryUsers
	codes       *memoryCodes
	notifier    *recordingNotifier
	revocations *memoryRevocations
	sessions    *SessionIssuer
	service     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	clock := newFakeClock()
	f := &fixture{
		clock:       clock,
		users:       newMemoryUsers(),
		codes:       newMemoryCodes(clock),
		notifier:    &recordingNotifier{},
		revocations: newMemoryRevocations(),
	}
	f.sessions = NewSessionIssuer(cfg, f.revocations)
	f.sessions.nowFn = clock.Now
	f.service = NewService(f.users, f.codes, f.notifier, NewBcryptHasher(cfg), f.sessions, cfg, zap.NewNop())
	return f
}

// verifiedUser signs up email and verifies it with the mailed code.
func (f *fixture) verifiedUser(t *testing.T, email, password string) *User {
	t.Helper()
	ctx := context.Background()
	if _, err := f.service.Signup(ctx, SignupRequest{Email: email, Password: password}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	res, err := f.service.VerifyOTP(ctx, VerifyOTPRequest{Email: email, OTP: f.notifier.last().code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return res.Session.User
}
