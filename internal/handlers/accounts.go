package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/services"
	"github.com/harentsoaR/campus-api/internal/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileDetailsRequest struct {
	FullName    string `json:"fullName" binding:"required,notblank"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required,notblank"`
	Gender      string `json:"gender" binding:"required,notblank"`
	Username    string `json:"username" binding:"required,notblank"`
}

func (r profileDetailsRequest) details() services.ProfileDetails {
	return services.ProfileDetails{
		FullName:    strings.TrimSpace(r.FullName),
		Email:       strings.ToLower(strings.TrimSpace(r.Email)),
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		Gender:      strings.TrimSpace(r.Gender),
		Username:    strings.ToLower(strings.TrimSpace(r.Username)),
	}
}

// accountRoutes serves the endpoints every role has in common: login,
// logout, token refresh, the current profile and its picture.
type accountRoutes[T any, P services.Principal[T]] struct {
	h        *Handler
	accounts *services.AccountService[T, P]
	key      string
	label    string
	view     func(ctx context.Context, user *T) (any, error)
}

func (r accountRoutes[T, P]) current(c *gin.Context) *T {
	return middleware.Current[T](c, r.key)
}

func (r accountRoutes[T, P]) respondWithTokens(c *gin.Context, status int, user *T, pair utils.TokenPair, message string) {
	view, err := r.view(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	r.h.setAuthCookies(c, pair)
	respond(c, status, gin.H{
		r.key:          view,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, message)
}

func (r accountRoutes[T, P]) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	user, pair, err := r.accounts.Login(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Username)), req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	r.respondWithTokens(c, http.StatusOK, user, pair, "Logged in Successfully")
}

func (r accountRoutes[T, P]) Logout(c *gin.Context) {
	user := r.current(c)
	if err := r.accounts.Logout(c.Request.Context(), P(user).Account().ID); err != nil {
		fail(c, err)
		return
	}
	r.h.clearAuthCookies(c)
	respond(c, http.StatusOK, nil, "Logged out successfully")
}

// Refresh accepts the refresh token from the cookie, the JSON body or the
// Authorization header, in that order.
func (r accountRoutes[T, P]) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var req refreshRequest
		// an empty or non-JSON body just means no token in the body
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	pair, err := r.accounts.Refresh(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		fail(c, err)
		return
	}
	r.h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

func (r accountRoutes[T, P]) Current(c *gin.Context) {
	view, err := r.view(c.Request.Context(), r.current(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, r.label+" fetched successfully")
}

func (r accountRoutes[T, P]) UpdateProfilePicture(c *gin.Context) {
	upload, closeUpload, err := profileUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeUpload()

	user, err := r.accounts.UpdateProfilePicture(c.Request.Context(), P(r.current(c)).Account().ID, upload)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := r.view(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Profile picture updated successfully")
}

// updateDetails binds the shared profile fields plus the role's own request
// type, which must embed profileDetailsRequest.
func (r accountRoutes[T, P]) updateDetails(c *gin.Context, details services.ProfileDetails, apply func(P), extra ...services.UniqueCheck) {
	user, err := r.accounts.UpdateProfileDetails(c.Request.Context(), P(r.current(c)).Account().ID, details, apply, extra...)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := r.view(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Profile details updated successfully")
}
