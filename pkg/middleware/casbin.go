package middleware

import (
	"FitTrack/internal/auth"
	"FitTrack/internal/config"
	"fmt"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	SubjectVerified   = "verified"
	SubjectUnverified = "unverified"
)

// verificationModel matches the session's verification state against a
// route pattern and method. "*" as action allows every method.
const verificationModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// defaultVerificationPolicies let unverified sessions through just like
// verified ones. Point RBAC_POLICY_FILE at a CSV to lock routes down to
// verified users.
var defaultVerificationPolicies = [][]string{
	{SubjectVerified, "/api/*", "*"},
	{SubjectUnverified, "/api/*", "*"},
	{SubjectVerified, "/auth/check", http.MethodGet},
	{SubjectUnverified, "/auth/check", http.MethodGet},
}

// VerificationPolicy decides whether a session may reach a protected route
// given whether its email is verified.
type VerificationPolicy struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewVerificationPolicy(cfg *config.Config, logger *zap.Logger) (*VerificationPolicy, error) {
	logger = logger.Named("policy")
	m, err := model.NewModelFromString(verificationModel)
	if err != nil {
		return nil, fmt.Errorf("load verification model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if cfg.RBACPolicyFile != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(cfg.RBACPolicyFile))
		if err != nil {
			return nil, fmt.Errorf("load verification policy %s: %w", cfg.RBACPolicyFile, err)
		}
		logger.Info("verification policy loaded from file", zap.String("path", cfg.RBACPolicyFile))
	} else {
		enforcer, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("create enforcer: %w", err)
		}
		for _, rule := range defaultVerificationPolicies {
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return nil, fmt.Errorf("add default policy: %w", err)
			}
		}
		logger.Info("default verification policy loaded, unverified sessions are allowed")
	}
	return &VerificationPolicy{enforcer: enforcer, logger: logger}, nil
}

// Allowed reports whether a session in the given state may call method on
// the route pattern path.
func (p *VerificationPolicy) Allowed(verified bool, path, method string) (bool, error) {
	subject := SubjectUnverified
	if verified {
		subject = SubjectVerified
	}
	return p.enforcer.Enforce(subject, path, method)
}

// Middleware must run after SessionGuard.
func (p *VerificationPolicy) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := auth.ClaimsFromContext(c)
		if !ok {
			return reject(c, auth.ErrUnauthenticated)
		}
		allowed, err := p.Allowed(claims.Verified, c.Path(), c.Request().Method)
		if err != nil {
			p.logger.Error("policy enforcement failed", zap.Error(err))
			return reject(c, err)
		}
		if !allowed {
			p.logger.Debug("policy denied",
				zap.Bool("verified", claims.Verified),
				zap.String("path", c.Path()),
				zap.String("method", c.Request().Method),
			)
			return forbidden(c, "email verification required")
		}
		return next(c)
	}
}
