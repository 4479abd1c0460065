package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddCityDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()

	_, err := env.hierarchy.AddCity(ctx, admin, "Lahore")
	require.NoError(t, err)
	_, err = env.hierarchy.AddCity(ctx, admin, "Lahore")
	requireStatus(t, err, http.StatusConflict)
}

func TestAddCampusIsUniquePerCity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()
	lahore, err := env.hierarchy.AddCity(ctx, admin, "Lahore")
	require.NoError(t, err)
	karachi, err := env.hierarchy.AddCity(ctx, admin, "Karachi")
	require.NoError(t, err)

	_, err = env.hierarchy.AddCampus(ctx, admin, "Gulberg", lahore.ID)
	require.NoError(t, err)
	_, err = env.hierarchy.AddCampus(ctx, admin, "Gulberg", lahore.ID)
	requireStatus(t, err, http.StatusConflict)
	_, err = env.hierarchy.AddCampus(ctx, admin, "Gulberg", karachi.ID)
	require.NoError(t, err)

	_, err = env.hierarchy.AddCampus(ctx, admin, "Nowhere", primitive.NewObjectID())
	requireStatus(t, err, http.StatusNotFound)

	inLahore, err := env.hierarchy.ListCampuses(ctx, &lahore.ID)
	require.NoError(t, err)
	assert.Len(t, inLahore, 1)
	all, err := env.hierarchy.ListCampuses(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddCourseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.newPlacement(t, "Lahore")

	result, err := env.hierarchy.AddCourse(ctx, primitive.NewObjectID(), "Web Development", p.city.ID, p.campus.ID)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.False(t, result.Changed)
	assert.Equal(t, p.course.ID, result.Course.ID)
	assert.Equal(t, []primitive.ObjectID{p.city.ID}, result.Course.City)
	assert.Equal(t, []primitive.ObjectID{p.campus.ID}, result.Course.Campus)

	courses, err := env.hierarchy.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestAddCourseExtendsExistingCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()
	p := env.newPlacement(t, "Lahore")
	second, err := env.hierarchy.AddCampus(ctx, admin, "Johar Town", p.city.ID)
	require.NoError(t, err)

	result, err := env.hierarchy.AddCourse(ctx, admin, "Web Development", p.city.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.True(t, result.Changed)
	assert.Equal(t, []primitive.ObjectID{p.city.ID}, result.Course.City)
	assert.ElementsMatch(t, []primitive.ObjectID{p.campus.ID, second.ID}, result.Course.Campus)
}

func TestAddCourseRejectsCampusOfOtherCity(t *testing.T) {
	env := newTestEnv(t)
	lahore := env.newPlacement(t, "Lahore")
	karachi := env.newPlacement(t, "Karachi")

	_, err := env.hierarchy.AddCourse(context.Background(), primitive.NewObjectID(), "Data Science", lahore.city.ID, karachi.campus.ID)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRemoveLastCampusDropsCity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()
	p := env.newPlacement(t, "Lahore")
	second, err := env.hierarchy.AddCampus(ctx, admin, "Johar Town", p.city.ID)
	require.NoError(t, err)
	_, err = env.hierarchy.AddCourse(ctx, admin, "Web Development", p.city.ID, second.ID)
	require.NoError(t, err)

	course, err := env.hierarchy.RemoveCourseCampus(ctx, p.course.ID, p.campus.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{second.ID}, course.Campus)
	assert.Equal(t, []primitive.ObjectID{p.city.ID}, course.City)

	course, err = env.hierarchy.RemoveCourseCampus(ctx, p.course.ID, second.ID)
	require.NoError(t, err)
	assert.Empty(t, course.Campus)
	assert.Empty(t, course.City)

	_, err = env.hierarchy.RemoveCourseCampus(ctx, p.course.ID, second.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestRemoveCourseCityDropsItsCampuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lahore := env.newPlacement(t, "Lahore")
	karachi := env.newPlacement(t, "Karachi")
	require.Equal(t, lahore.course.ID, karachi.course.ID)

	course, err := env.hierarchy.RemoveCourseCity(ctx, lahore.course.ID, lahore.city.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{karachi.city.ID}, course.City)
	assert.Equal(t, []primitive.ObjectID{karachi.campus.ID}, course.Campus)

	_, err = env.hierarchy.RemoveCourseCity(ctx, lahore.course.ID, lahore.city.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestRenameAndDeleteCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()
	p := env.newPlacement(t, "Lahore")
	other, err := env.hierarchy.AddCourse(ctx, admin, "Data Science", p.city.ID, p.campus.ID)
	require.NoError(t, err)

	_, err = env.hierarchy.RenameCourse(ctx, other.Course.ID, "Web Development")
	requireStatus(t, err, http.StatusConflict)

	renamed, err := env.hierarchy.RenameCourse(ctx, other.Course.ID, "Machine Learning")
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", renamed.Name)

	require.NoError(t, env.hierarchy.DeleteCourse(ctx, renamed.ID))
	requireStatus(t, env.hierarchy.DeleteCourse(ctx, renamed.ID), http.StatusNotFound)
}

func TestValidatePlacement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lahore := env.newPlacement(t, "Lahore")
	karachi := env.newPlacement(t, "Karachi")

	require.NoError(t, env.hierarchy.ValidatePlacement(ctx, lahore.city.ID, lahore.campus.ID, lahore.course.ID))
	requireStatus(t, env.hierarchy.ValidatePlacement(ctx, lahore.city.ID, karachi.campus.ID, lahore.course.ID), http.StatusBadRequest)
	requireStatus(t, env.hierarchy.ValidatePlacement(ctx, primitive.NewObjectID(), lahore.campus.ID, lahore.course.ID), http.StatusNotFound)
}
