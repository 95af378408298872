/*
Package auth is the authentication collaborator: it turns credentials
into a signed token plus a clinic.Principal, and nothing else in the
system ever sees a password.

PURPOSE:
  - Registration: role forced to customer, duplicate email -> Conflict
  - Login: bcrypt check, opaque "invalid credentials" on any mismatch
  - Seeding: one bootstrap therapist created at first boot
  - Tokens: HS256 JWTs carrying {id, name, email, role}, 24h expiry

SEE ALSO:
  - jwt.go: token issue/validate
  - password.go: bcrypt helpers
*/
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auratheracare/clinic-engine/clinic"
)

var (
	// ErrInvalidCredentials is returned on any login mismatch. It is
	// deliberately opaque: it never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, forged, or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator handles registration, login, and first-boot seeding.
type Authenticator struct {
	Users  clinic.UserStore
	Tokens *TokenManager
}

func NewAuthenticator(users clinic.UserStore, tokens *TokenManager) *Authenticator {
	return &Authenticator{Users: users, Tokens: tokens}
}

// Login checks credentials and issues a token.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, clinic.Principal, error) {
	if email == "" || password == "" {
		return "", clinic.Principal{}, &clinic.ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	user, hash, err := a.Users.Credentials(ctx, email)
	if clinic.IsNotFound(err) {
		return "", clinic.Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", clinic.Principal{}, err
	}
	if !CheckPasswordHash(password, hash) {
		return "", clinic.Principal{}, ErrInvalidCredentials
	}

	p := principalOf(*user)
	token, err := a.Tokens.Issue(p)
	return token, p, err
}

// Register creates a customer account and issues a token. New
// registrations are always customers; the therapist role exists only
// via seeding.
func (a *Authenticator) Register(ctx context.Context, name, email, password, phone string) (string, clinic.Principal, error) {
	switch {
	case name == "":
		return "", clinic.Principal{}, &clinic.ValidationError{Field: "name", Reason: "required"}
	case email == "" || !strings.Contains(email, "@"):
		return "", clinic.Principal{}, &clinic.ValidationError{Field: "email", Reason: "valid email required"}
	case len(password) < 6:
		return "", clinic.Principal{}, &clinic.ValidationError{Field: "password", Reason: "must be at least 6 characters long"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", clinic.Principal{}, err
	}

	user := clinic.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Role:      clinic.RoleCustomer,
		CreatedAt: time.Now(),
	}
	if err := a.Users.Create(ctx, user, hash); err != nil {
		return "", clinic.Principal{}, err
	}

	p := principalOf(user)
	token, err := a.Tokens.Issue(p)
	return token, p, err
}

// SeedTherapist creates the bootstrap therapist account if the email is
// not registered yet. Idempotent across restarts.
func (a *Authenticator) SeedTherapist(ctx context.Context, name, email, password string) error {
	if _, err := a.Users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !clinic.IsNotFound(err) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return a.Users.Create(ctx, clinic.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      clinic.RoleTherapist,
		CreatedAt: time.Now(),
	}, hash)
}

func principalOf(u clinic.User) clinic.Principal {
	return clinic.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
