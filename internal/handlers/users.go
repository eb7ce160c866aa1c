package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

type ProfileInput struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordCodeInput struct {
	Email string `json:"email" binding:"required,email"`
}

type SetPasswordInput struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SaveUser records the authenticated caller on first sight and its last
// login afterwards. The email always comes from the verified token.
func SaveUser(accounts *delivery.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProfileInput
		if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
			return
		}

		user, err := accounts.Register(c.Request.Context(), caller(c), models.User{
			Name:     input.Name,
			PhotoURL: input.PhotoURL,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user)
	}
}

// RequestPasswordCode mails a one-time code used to set a password.
func RequestPasswordCode(accounts *delivery.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PasswordCodeInput
		if !bindJSON(c, &input) {
			return
		}
		if err := accounts.RequestPasswordCode(c.Request.Context(), input.Email); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusAccepted, "A verification code has been sent to your email", nil)
	}
}

// SetPassword redeems an emailed code and sets the account password.
func SetPassword(accounts *delivery.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SetPasswordInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := accounts.SetPassword(c.Request.Context(), input.Email, input.Code, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Password updated", user)
	}
}

// GetUserRole returns the stored role of an email. Users may only ask about themselves.
func GetUserRole(accounts *delivery.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := caller(c)
		email := strings.ToLower(c.Param("email"))
		if email != id.Email && !id.IsAdmin() {
			respondError(c, apperr.Forbidden("you can only look up your own role"))
			return
		}

		role, err := accounts.RoleOf(c.Request.Context(), email)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"email": email, "role": role})
	}
}

// Login exchanges an email and password for a signed token.
func Login(accounts *delivery.Accounts, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			respondError(c, apperr.NotFound("password login is not enabled"))
			return
		}
		var input LoginInput
		if !bindJSON(c, &input) {
			return
		}

		user, err := accounts.Authenticate(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := utils.GenerateToken(user.Email, user.Name, secret, ttl)
		if err != nil {
			respondError(c, apperr.Internal(err, "failed to generate token"))
			return
		}
		respond(c, http.StatusOK, gin.H{"token": token, "user": user})
	}
}
