package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/utils"
)

func TestRegisterStoresHashedPassword(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.registerTeacher(t, "ada")

	stored, err := env.teachers.Get(context.Background(), teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, stored.Role)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, utils.CheckPasswordHash("secret123", stored.Password))
	assert.Contains(t, stored.Profile, "http://localhost:8080/uploads/profiles/")
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	env.registerTeacher(t, "ada")

	dup := &models.Teacher{User: models.User{FullName: "Other", Username: "ada", Email: "other@school.test"}}
	err := env.teachers.Register(context.Background(), dup, "secret123", profileUpload())
	requireStatus(t, err, http.StatusConflict)

	dup = &models.Teacher{User: models.User{FullName: "Other", Username: "other", Email: "ada@school.test"}}
	err = env.teachers.Register(context.Background(), dup, "secret123", profileUpload())
	requireStatus(t, err, http.StatusConflict)

	count, err := env.teachers.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRegisterStudentDuplicateCNIC(t *testing.T) {
	env := newTestEnv(t)
	env.registerStudent(t, "sam")

	dup := &models.Student{User: models.User{Username: "kim", Email: "kim@school.test"}, CNIC: "cnic-sam"}
	err := env.students.Register(context.Background(), dup, "secret123", profileUpload(),
		UniqueCheck{Field: "CNIC", Value: dup.CNIC, Label: "CNIC"})
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, "CNIC already exists", err.Error())
}

func TestRegisterRequiresProfileImage(t *testing.T) {
	env := newTestEnv(t)

	teacher := &models.Teacher{User: models.User{Username: "ada", Email: "ada@school.test"}}
	err := env.teachers.Register(context.Background(), teacher, "secret123", nil)
	requireStatus(t, err, http.StatusBadRequest)

	teacher = &models.Teacher{User: models.User{Username: "ada", Email: "ada@school.test"}}
	err = env.teachers.Register(context.Background(), teacher, "secret123", &Upload{Filename: "cv.pdf", Content: nil})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.registerTeacher(t, "ada")

	_, _, err := env.teachers.Login(ctx, "nobody", "secret123")
	requireStatus(t, err, http.StatusNotFound)

	_, _, err = env.teachers.Login(ctx, "ada", "wrong")
	requireStatus(t, err, http.StatusUnauthorized)

	user, pair, err := env.teachers.Login(ctx, "ada", "secret123")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, user.ID)
	assert.Equal(t, pair.RefreshToken, user.RefreshToken)

	claims, err := env.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID.Hex(), claims.UserID)
	assert.Equal(t, "ada@school.test", claims.Email)
}

func TestLoginIsScopedToRole(t *testing.T) {
	env := newTestEnv(t)
	env.registerTeacher(t, "ada")

	_, _, err := env.students.Login(context.Background(), "ada", "secret123")
	requireStatus(t, err, http.StatusNotFound)
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerTeacher(t, "ada")

	_, first, err := env.teachers.Login(ctx, "ada", "secret123")
	require.NoError(t, err)

	second, err := env.teachers.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.teachers.Refresh(ctx, first.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Refresh token is expired or used", err.Error())

	_, err = env.teachers.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerTeacher(t, "ada")
	_, pair, err := env.teachers.Login(ctx, "ada", "secret123")
	require.NoError(t, err)

	_, err = env.teachers.Refresh(ctx, "")
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "unauthorized request", err.Error())

	// an access token is signed with the other secret
	_, err = env.teachers.Refresh(ctx, pair.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Invalid refresh token", err.Error())

	// a teacher token means nothing to the student collection
	_, err = env.students.Refresh(ctx, pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.registerTeacher(t, "ada")
	_, pair, err := env.teachers.Login(ctx, "ada", "secret123")
	require.NoError(t, err)

	require.NoError(t, env.teachers.Logout(ctx, teacher.ID))

	_, err = env.teachers.Refresh(ctx, pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.registerTeacher(t, "ada")
	_, pair, err := env.teachers.Login(ctx, "ada", "secret123")
	require.NoError(t, err)

	user, err := env.teachers.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, user.ID)

	_, err = env.teachers.Authenticate(ctx, "")
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = env.teachers.Authenticate(ctx, "garbage")
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = env.admins.Authenticate(ctx, pair.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestUpdateProfileDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.registerTeacher(t, "ada")
	env.registerTeacher(t, "bob")

	_, err := env.teachers.UpdateProfileDetails(ctx, ada.ID, ProfileDetails{
		FullName: "Ada", Username: "ada", Email: "bob@school.test",
	}, nil)
	requireStatus(t, err, http.StatusConflict)

	updated, err := env.teachers.UpdateProfileDetails(ctx, ada.ID, ProfileDetails{
		FullName: "Ada Lovelace", Username: "ada", Email: "ada@school.test", Gender: "female",
	}, func(teacher *models.Teacher) { teacher.Course = primitive.NewObjectID() })
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName)
	assert.Equal(t, "female", updated.Gender)
	assert.False(t, updated.Course.IsZero())
}

func TestUpdateProfilePictureReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.registerTeacher(t, "ada")

	updated, err := env.teachers.UpdateProfilePicture(ctx, ada.ID, profileUpload())
	require.NoError(t, err)
	assert.NotEqual(t, ada.Profile, updated.Profile)
}

func TestSetVerified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sam := env.registerStudent(t, "sam")
	admin := primitive.NewObjectID()

	verified, err := env.students.SetVerified(ctx, sam.ID, true, admin)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.UpdatedBy)
	assert.Equal(t, admin, *verified.UpdatedBy)

	_, err = env.students.SetVerified(ctx, primitive.NewObjectID(), true, admin)
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.newPlacement(t, "Karachi")
	teacher := env.registerTeacher(t, "ada")
	idle := env.registerTeacher(t, "bob")
	enrolled := env.registerStudent(t, "sam")
	free := env.registerStudent(t, "kim")
	env.newClass(t, p, teacher.ID, "KEY-1")
	_, err := env.classes.Enroll(ctx, enrolled.ID, "KEY-1")
	require.NoError(t, err)

	requireStatus(t, DeleteStudent(ctx, env.students, enrolled.ID), http.StatusConflict)
	require.NoError(t, DeleteStudent(ctx, env.students, free.ID))
	requireStatus(t, DeleteStudent(ctx, env.students, free.ID), http.StatusNotFound)

	requireStatus(t, DeleteTeacher(ctx, env.teachers, teacher.ID), http.StatusConflict)
	require.NoError(t, DeleteTeacher(ctx, env.teachers, idle.ID))

	admin := primitive.NewObjectID()
	requireStatus(t, DeleteAdmin(ctx, env.admins, admin, admin), http.StatusBadRequest)
}
