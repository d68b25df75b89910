package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service  *Service
	sessions *SessionIssuer
	logger   *zap.Logger
}

func NewAuthHandler(service *Service, sessions *SessionIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions, logger: logger.Named("auth.http")}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return h.invalidRequest(c)
	}

	session, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "signup", err)
	}
	h.sessions.Attach(c, session.Token)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered, verification code sent",
		"user":    session.User,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := c.Bind(&cred); err != nil {
		return h.invalidRequest(c)
	}

	session, err := h.service.Login(c.Request().Context(), cred)
	if err != nil {
		return h.fail(c, "login", err)
	}
	h.sessions.Attach(c, session.Token)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logged in",
		"user":    session.User,
	})
}

// Logout always succeeds. A still-valid session cookie is denylisted
// before it is cleared.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		if claims, err := h.sessions.Parse(ctx, cookie.Value); err == nil {
			if err := h.sessions.Revoke(ctx, claims); err != nil {
				h.logger.Warn("session revocation failed", zap.String("email", claims.Email), zap.Error(err))
			}
		}
	}
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return h.invalidRequest(c)
	}

	result, err := h.service.VerifyOTP(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "verify_otp", err)
	}
	if result.ResetToken != "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":    "Code verified",
			"redirectTo": result.RedirectTo,
			"token":      result.ResetToken,
		})
	}
	h.sessions.Attach(c, result.Session.Token)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Email verified successfully",
		"redirectTo": result.RedirectTo,
		"user":       result.Session.User,
	})
}

func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return h.invalidRequest(c)
	}
	if err := h.service.ResendOTP(c.Request().Context(), req); err != nil {
		return h.fail(c, "resend_otp", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Verification code sent"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return h.invalidRequest(c)
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req); err != nil {
		return h.fail(c, "forgot_password", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset code sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return h.invalidRequest(c)
	}

	session, err := h.service.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "reset_password", err)
	}
	h.sessions.Attach(c, session.Token)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Password successfully reset",
		"user":    session.User,
	})
}

// Check returns the user behind the session cookie. A session whose user no
// longer exists is treated as invalid.
func (h *AuthHandler) Check(c echo.Context) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return h.fail(c, "check", ErrUnauthenticated)
	}
	user, err := h.service.CurrentUser(c.Request().Context(), claims)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return h.fail(c, "check", ErrInvalidToken)
		}
		return h.fail(c, "check", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

// Me exposes the authenticated identity that downstream collaborators
// (profile, health data, workouts, meals, chat) key their records on.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return h.fail(c, "me", ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       claims.ID,
		"email":    claims.Email,
		"verified": claims.Verified,
	})
}

func (h *AuthHandler) invalidRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request", "code": "INVALID_INPUT"})
}

func (h *AuthHandler) fail(c echo.Context, operation string, err error) error {
	status, code, message := MapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("auth operation failed",
			zap.String("operation", operation),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	}
	return c.JSON(status, map[string]string{"error": message, "code": code})
}
