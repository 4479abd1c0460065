package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
)

func TestMemoryInsertAndFind(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	city := &models.City{ID: primitive.NewObjectID(), CityName: "Lahore"}
	require.NoError(t, st.Cities.Insert(ctx, city))

	found, err := st.Cities.FindByID(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lahore", found.CityName)

	_, err = st.Cities.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.Cities.Insert(ctx, &models.City{CityName: "No id"})
	assert.Error(t, err)
}

func TestMemoryUniqueKeys(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	lahore := primitive.NewObjectID()
	karachi := primitive.NewObjectID()

	require.NoError(t, st.Campuses.Insert(ctx, &models.Campus{ID: primitive.NewObjectID(), Name: "Main", City: lahore}))
	require.NoError(t, st.Campuses.Insert(ctx, &models.Campus{ID: primitive.NewObjectID(), Name: "Main", City: karachi}))

	err := st.Campuses.Insert(ctx, &models.Campus{ID: primitive.NewObjectID(), Name: "Main", City: lahore})
	assert.ErrorIs(t, err, ErrDuplicate)

	other := &models.Campus{ID: primitive.NewObjectID(), Name: "North", City: lahore}
	require.NoError(t, st.Campuses.Insert(ctx, other))
	other.Name = "Main"
	assert.ErrorIs(t, st.Campuses.Replace(ctx, other.ID, other), ErrDuplicate)
}

func TestMemoryFilters(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	lahore := primitive.NewObjectID()
	karachi := primitive.NewObjectID()

	web := &models.Course{ID: primitive.NewObjectID(), Name: "Web", City: []primitive.ObjectID{lahore, karachi}}
	data := &models.Course{ID: primitive.NewObjectID(), Name: "Data", City: []primitive.ObjectID{karachi}}
	require.NoError(t, st.Courses.Insert(ctx, web))
	require.NoError(t, st.Courses.Insert(ctx, data))

	inLahore, err := st.Courses.Find(ctx, bson.M{"city": lahore})
	require.NoError(t, err)
	require.Len(t, inLahore, 1)
	assert.Equal(t, "Web", inLahore[0].Name)

	byIDs, err := st.Courses.Find(ctx, IDsFilter([]primitive.ObjectID{web.ID, data.ID}))
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	notWeb, err := st.Courses.Find(ctx, bson.M{"name": bson.M{"$ne": "Web"}})
	require.NoError(t, err)
	require.Len(t, notWeb, 1)
	assert.Equal(t, "Data", notWeb[0].Name)

	count, err := st.Courses.Count(ctx, bson.M{"city": karachi})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	none, err := st.Courses.Find(ctx, bson.M{"name": "Missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryReplaceAndDelete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	city := &models.City{ID: primitive.NewObjectID(), CityName: "Lahore"}
	require.NoError(t, st.Cities.Insert(ctx, city))

	city.CityName = "Lahore City"
	require.NoError(t, st.Cities.Replace(ctx, city.ID, city))
	found, err := st.Cities.FindOne(ctx, bson.M{"cityName": "Lahore City"})
	require.NoError(t, err)
	assert.Equal(t, city.ID, found.ID)

	require.NoError(t, st.Cities.Delete(ctx, city.ID))
	assert.ErrorIs(t, st.Cities.Delete(ctx, city.ID), ErrNotFound)
	assert.ErrorIs(t, st.Cities.Replace(ctx, city.ID, city), ErrNotFound)
}
