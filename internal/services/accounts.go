package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/storage"
	"github.com/harentsoaR/campus-api/internal/store"
	"github.com/harentsoaR/campus-api/internal/utils"
)

// Principal is satisfied by *models.Admin, *models.Teacher and
// *models.Student through their inlined models.User.
type Principal[T any] interface {
	*T
	Account() *models.User
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UniqueCheck names a field whose value must not be used by another user of
// the same role.
type UniqueCheck struct {
	Field string
	Value string
	Label string
}

// ProfileDetails are the fields every role may edit on its own profile.
type ProfileDetails struct {
	FullName    string
	Email       string
	PhoneNumber string
	Gender      string
	Username    string
}

// AccountService is the credential store and token flow of one role. The
// three roles share the implementation and differ only in collection.
type AccountService[T any, P Principal[T]] struct {
	users  store.Collection[T]
	tokens *utils.TokenIssuer
	images storage.ImageStore
	logger *slog.Logger
	role   string
	now    func() time.Time
}

func NewAccountService[T any, P Principal[T]](
	users store.Collection[T],
	tokens *utils.TokenIssuer,
	images storage.ImageStore,
	logger *slog.Logger,
	role string,
) *AccountService[T, P] {
	return &AccountService[T, P]{
		users:  users,
		tokens: tokens,
		images: images,
		logger: logger,
		role:   role,
		now:    time.Now,
	}
}

func (s *AccountService[T, P]) Role() string { return s.role }

func (s *AccountService[T, P]) notFound() error {
	return utils.NotFound("User not found")
}

// CheckUnique fails with 409 when another user (not self) already holds one
// of the given values.
func (s *AccountService[T, P]) CheckUnique(ctx context.Context, self primitive.ObjectID, checks ...UniqueCheck) error {
	for _, check := range checks {
		existing, err := s.users.FindOne(ctx, bson.M{check.Field: check.Value})
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if P(existing).Account().ID != self {
			return utils.Conflict(check.Label + " already exists")
		}
	}
	return nil
}

func (s *AccountService[T, P]) credentialChecks(acc *models.User) []UniqueCheck {
	return []UniqueCheck{
		{Field: "username", Value: acc.Username, Label: "Username"},
		{Field: "email", Value: acc.Email, Label: "Email"},
	}
}

func (s *AccountService[T, P]) uploadProfile(ctx context.Context, profile *Upload) (string, error) {
	if profile == nil {
		return "", utils.BadRequest("Profile image is required")
	}
	url, err := s.images.Upload(ctx, profile.Filename, profile.Content)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return "", utils.BadRequest("Profile image must be a jpg, png, gif or webp file")
	}
	if err != nil {
		s.logger.Error("profile upload failed", "role", s.role, "error", err)
		return "", utils.BadRequest("Profile image upload failed")
	}
	return url, nil
}

func (s *AccountService[T, P]) discardProfile(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete profile image", "role", s.role, "url", url, "error", err)
	}
}

// Register stores a new user. Uniqueness is checked before the profile image
// is uploaded so a rejected registration leaves nothing behind.
func (s *AccountService[T, P]) Register(ctx context.Context, user P, password string, profile *Upload, extra ...UniqueCheck) error {
	acc := user.Account()
	checks := append(s.credentialChecks(acc), extra...)
	if err := s.CheckUnique(ctx, primitive.NilObjectID, checks...); err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	url, err := s.uploadProfile(ctx, profile)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	acc.ID = primitive.NewObjectID()
	acc.Password = hashedPassword
	acc.Profile = url
	acc.Role = s.role
	acc.RefreshToken = ""
	acc.CreatedAt = now
	acc.UpdatedAt = now

	if err := s.users.Insert(ctx, (*T)(user)); err != nil {
		s.discardProfile(ctx, url)
		if errors.Is(err, store.ErrDuplicate) {
			return utils.Conflict("User already exists")
		}
		return err
	}
	return nil
}

// Create stores a user that needs no profile image (seeding).
func (s *AccountService[T, P]) Create(ctx context.Context, user P, password string) error {
	acc := user.Account()
	if err := s.CheckUnique(ctx, primitive.NilObjectID, s.credentialChecks(acc)...); err != nil {
		return err
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	acc.ID = primitive.NewObjectID()
	acc.Password = hashedPassword
	acc.Role = s.role
	acc.CreatedAt = now
	acc.UpdatedAt = now
	return s.users.Insert(ctx, (*T)(user))
}

func (s *AccountService[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.notFound()
	}
	return user, err
}

func (s *AccountService[T, P]) List(ctx context.Context, filter bson.M) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.users.Find(ctx, filter)
}

func (s *AccountService[T, P]) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx, bson.M{})
}

// Save persists in-place edits made by the caller.
func (s *AccountService[T, P]) Save(ctx context.Context, user P) error {
	acc := user.Account()
	acc.UpdatedAt = s.now().UTC()
	err := s.users.Replace(ctx, acc.ID, (*T)(user))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.notFound()
	case errors.Is(err, store.ErrDuplicate):
		return utils.Conflict("User already exists")
	}
	return err
}

// Login checks the credentials and issues a fresh token pair.
func (s *AccountService[T, P]) Login(ctx context.Context, username, password string) (*T, utils.TokenPair, error) {
	user, err := s.users.FindOne(ctx, bson.M{"username": username})
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.TokenPair{}, s.notFound()
	}
	if err != nil {
		return nil, utils.TokenPair{}, err
	}

	if !utils.CheckPasswordHash(password, P(user).Account().Password) {
		return nil, utils.TokenPair{}, utils.Unauthorized("username or password is incorrect")
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, utils.TokenPair{}, err
	}
	return user, pair, nil
}

// IssueTokens issues a token pair for an already authenticated user.
func (s *AccountService[T, P]) IssueTokens(ctx context.Context, user P) (utils.TokenPair, error) {
	return s.issue(ctx, (*T)(user))
}

// issue signs a new pair and stores the refresh token, replacing (and so
// revoking) any previous one.
func (s *AccountService[T, P]) issue(ctx context.Context, user *T) (utils.TokenPair, error) {
	acc := P(user).Account()
	pair, err := s.tokens.Issue(acc.ID.Hex(), acc.Email, acc.FullName)
	if err != nil {
		return utils.TokenPair{}, utils.NewAPIError(http.StatusInternalServerError, "Something went wrong while generating access and refresh token")
	}
	acc.RefreshToken = pair.RefreshToken
	if err := s.users.Replace(ctx, acc.ID, user); err != nil {
		return utils.TokenPair{}, err
	}
	return pair, nil
}

// Refresh rotates the token pair. The presented token must be the one last
// issued to the user; a token that was already rotated away is rejected.
func (s *AccountService[T, P]) Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error) {
	if refreshToken == "" {
		return utils.TokenPair{}, utils.Unauthorized("unauthorized request")
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return utils.TokenPair{}, utils.Unauthorized("Invalid refresh token")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return utils.TokenPair{}, utils.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.TokenPair{}, utils.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return utils.TokenPair{}, err
	}

	if refreshToken != P(user).Account().RefreshToken {
		return utils.TokenPair{}, utils.Unauthorized("Refresh token is expired or used")
	}

	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token.
func (s *AccountService[T, P]) Logout(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	P(user).Account().RefreshToken = ""
	return s.users.Replace(ctx, id, user)
}

// Authenticate resolves an access token to its user.
func (s *AccountService[T, P]) Authenticate(ctx context.Context, accessToken string) (*T, error) {
	if accessToken == "" {
		return nil, utils.Unauthorized("Unauthorized request")
	}
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, utils.Unauthorized("Invalid access token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.Unauthorized("Invalid access token")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.Unauthorized("Invalid access token")
	}
	return user, err
}

// UpdateProfileDetails applies details (and any role specific edits made by
// apply) after checking that username and email stay unique.
func (s *AccountService[T, P]) UpdateProfileDetails(ctx context.Context, id primitive.ObjectID, details ProfileDetails, apply func(P), extra ...UniqueCheck) (*T, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	checks := append([]UniqueCheck{
		{Field: "username", Value: details.Username, Label: "Username"},
		{Field: "email", Value: details.Email, Label: "Email"},
	}, extra...)
	if err := s.CheckUnique(ctx, id, checks...); err != nil {
		return nil, err
	}

	acc := P(user).Account()
	acc.FullName = details.FullName
	acc.Email = details.Email
	acc.PhoneNumber = details.PhoneNumber
	acc.Gender = details.Gender
	acc.Username = details.Username
	if apply != nil {
		apply(P(user))
	}

	if err := s.Save(ctx, P(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfilePicture uploads the new image, stores its URL and then
// removes the previous image.
func (s *AccountService[T, P]) UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, profile *Upload) (*T, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploadProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	acc := P(user).Account()
	previous := acc.Profile
	acc.Profile = url
	if err := s.Save(ctx, P(user)); err != nil {
		s.discardProfile(ctx, url)
		return nil, err
	}
	s.discardProfile(ctx, previous)
	return user, nil
}

// SetVerified flips the verification flag on behalf of an admin.
func (s *AccountService[T, P]) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool, by primitive.ObjectID) (*T, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	acc := P(user).Account()
	acc.IsVerified = verified
	acc.UpdatedBy = &by
	if err := s.Save(ctx, P(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and its profile image. Callers enforce any
// referential rule before calling it.
func (s *AccountService[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.notFound()
		}
		return err
	}
	s.discardProfile(ctx, P(user).Account().Profile)
	return nil
}
