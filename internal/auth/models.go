package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity. Profile fields are owned by the profile
// collaborator and only carried here.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"password_hash" json:"-"`
	IsVerified      bool               `bson:"is_verified" json:"isVerified"`
	Name            string             `bson:"name,omitempty" json:"name,omitempty"`
	AdmissionNumber string             `bson:"admission_number,omitempty" json:"admissionNumber,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Purpose tells which flow a one-time code belongs to.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposePasswordReset Purpose = "password_reset"
	// PurposeResetTicket marks the opaque ticket a verified reset code is
	// exchanged for. Code holds the ticket's SHA-256, never the ticket.
	PurposeResetTicket Purpose = "reset_ticket"
)

type OneTimeCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Code      string             `bson:"code"`
	Purpose   Purpose            `bson:"purpose"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	IsPasswordReset bool   `json:"isPasswordReset"`
}

type ResendOTPRequest struct {
	Email           string `json:"email"`
	IsPasswordReset bool   `json:"isPasswordReset"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Session is a freshly minted session token and the identity it was minted
// for.
type Session struct {
	User   *User
	Token  string
	Claims *Claims
}

// VerifyResult is the outcome of a successful code verification. Signup
// verification carries a Session; reset verification carries a ResetToken.
type VerifyResult struct {
	RedirectTo string
	Session    *Session
	ResetToken string
}
