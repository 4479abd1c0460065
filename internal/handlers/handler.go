package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/services"
	"github.com/harentsoaR/campus-api/internal/utils"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// Services are the collaborators the handlers call into.
type Services struct {
	Admins     *services.AdminAccounts
	Teachers   *services.TeacherAccounts
	Students   *services.StudentAccounts
	Hierarchy  *services.HierarchyService
	Classes    *services.ClassService
	Coursework *services.CourseworkService
	Populator  *services.Populator
}

// CookieConfig controls the auth cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	Services
	Logger  *slog.Logger
	Cookies CookieConfig
}

func NewHandler(svc Services, logger *slog.Logger, cookies CookieConfig) *Handler {
	return &Handler{
		Services: svc,
		Logger:   logger,
		Cookies:  cookies,
	}
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, utils.NewResponse(status, data, message))
}

// fail hands err to the error boundary.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func failBinding(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
}

func parseID(value, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("Invalid " + label)
	}
	return id, nil
}

// parseOptionalID parses value when it is set.
func parseOptionalID(value *string, label string) (*primitive.ObjectID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := parseID(*value, label)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func pathID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := parseID(c.Param(param), param)
	if err != nil {
		fail(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) setAuthCookies(c *gin.Context, pair utils.TokenPair) {
	h.sameSite(c)
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(h.Cookies.AccessTTL.Seconds()), "/", "", h.Cookies.Secure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(h.Cookies.RefreshTTL.Seconds()), "/", "", h.Cookies.Secure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	h.sameSite(c)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.Cookies.Secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.Cookies.Secure, true)
}

func (h *Handler) sameSite(c *gin.Context) {
	if h.Cookies.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

// profileUpload returns the "profile" file of a multipart request, or nil
// when none was sent. The caller closes the returned file.
func profileUpload(c *gin.Context) (*services.Upload, func(), error) {
	header, err := c.FormFile("profile")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, utils.BadRequest("Invalid profile image")
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, utils.BadRequest("Invalid profile image")
	}
	return &services.Upload{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}
