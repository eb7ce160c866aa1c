package delivery

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

const minPasswordLength = 8

// CodeSender delivers one-time codes to an email address.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// Accounts is the identity store: users keyed by email and their roles.
type Accounts struct {
	deps   Deps
	admins map[string]struct{}
	codes  CodeSender
}

// NewAccounts creates the store. Verified identities whose email is in admins
// always hold the admin role. codes may be nil, which disables password setup.
func NewAccounts(deps Deps, admins []string, codes CodeSender) *Accounts {
	set := make(map[string]struct{}, len(admins))
	for _, email := range admins {
		set[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &Accounts{deps: deps.withDefaults(), admins: set, codes: codes}
}

func (a *Accounts) isBootstrapAdmin(email string) bool {
	_, ok := a.admins[email]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register records the verified caller on first sight and refreshes last
// login afterwards. The stored role of a new account is always user.
func (a *Accounts) Register(ctx context.Context, id models.Identity, profile models.User) (*models.User, error) {
	email := normalizeEmail(id.Email)
	if email == "" {
		return nil, apperr.Unauthorized("a verified email is required")
	}
	if profile.Name == "" {
		profile.Name = id.Name
	}
	return a.deps.Store.Users.Upsert(ctx, &models.User{
		Email:    email,
		Name:     profile.Name,
		PhotoURL: profile.PhotoURL,
		Role:     models.RoleUser,
	}, a.deps.Now())
}

// RequestPasswordCode mails a one-time code that proves ownership of email.
// Any earlier code for the address stops working.
func (a *Accounts) RequestPasswordCode(ctx context.Context, email string) error {
	if a.codes == nil {
		return apperr.NotFound("password login is not enabled")
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return apperr.BadRequest("a valid email is required")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return apperr.Internal(err, "failed to generate code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "failed to hash code")
	}
	err = a.deps.Store.OTPs.Replace(ctx, &models.OTP{
		Email:     email,
		Purpose:   models.OTPPasswordSet,
		CodeHash:  string(hash),
		ExpiresAt: a.deps.Now().Add(utils.OTPExpiration),
	})
	if err != nil {
		return err
	}

	if err := a.codes.SendCode(ctx, email, code); err != nil {
		return apperr.Internal(err, "failed to send code")
	}
	a.deps.Log.Info("password code sent", "email", email)
	return nil
}

// SetPassword redeems a code from RequestPasswordCode and sets the password
// of email, creating a user account when there is none yet.
func (a *Accounts) SetPassword(ctx context.Context, email, code, password string) (*models.User, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, apperr.BadRequest("email and code are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.BadRequest("password must be at least %d characters", minPasswordLength)
	}

	otp, err := a.deps.Store.OTPs.Find(ctx, email, models.OTPPasswordSet)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("invalid or expired code")
	}
	if err != nil {
		return nil, err
	}
	now := a.deps.Now()
	if !otp.IsValid(now) {
		return nil, apperr.Unauthorized("invalid or expired code")
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		if err := a.deps.Store.OTPs.CountFailure(ctx, otp.ID); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized("invalid or expired code")
	}

	withPassword := &models.User{}
	if err := withPassword.SetPassword(password); err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	var user *models.User
	err = a.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		redeemed, err := tx.OTPs.Redeem(ctx, otp)
		if err != nil {
			return err
		}
		if !redeemed {
			return apperr.Unauthorized("invalid or expired code")
		}
		if user, err = tx.Users.Upsert(ctx, &models.User{Email: email, Role: models.RoleUser}, now); err != nil {
			return err
		}
		return tx.Users.SetPasswordHash(ctx, email, withPassword.PasswordHash)
	})
	if err != nil {
		return nil, err
	}
	a.deps.Log.Info("password set", "email", email)
	return user, nil
}

// Authenticate checks a password login.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.BadRequest("email and password are required")
	}
	user, err := a.deps.Store.Users.FindByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || user.CheckPassword(password) != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return user, nil
}

// RoleOf returns the stored role of email. Unknown identities are users.
func (a *Accounts) RoleOf(ctx context.Context, email string) (models.Role, error) {
	email = strings.ToLower(email)
	if a.isBootstrapAdmin(email) {
		return models.RoleAdmin, nil
	}
	return a.deps.Store.Users.RoleOf(ctx, email)
}
