package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CityName  string             `bson:"cityName" json:"cityName"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Campus struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	City      primitive.ObjectID `bson:"city" json:"city"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Course keeps denormalized membership lists. Every id in Campus belongs to
// a city listed in City.
type Course struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	City      []primitive.ObjectID `bson:"city" json:"city"`
	Campus    []primitive.ObjectID `bson:"campus" json:"campus"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (c *Course) HasCity(id primitive.ObjectID) bool {
	return slices.Contains(c.City, id)
}

func (c *Course) HasCampus(id primitive.ObjectID) bool {
	return slices.Contains(c.Campus, id)
}

type Class struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name          string               `bson:"name" json:"name"`
	EnrollmentKey string               `bson:"enrollmentKey" json:"enrollmentKey"`
	Batch         int                  `bson:"batch" json:"batch"`
	Teacher       primitive.ObjectID   `bson:"teacher" json:"teacher"`
	City          primitive.ObjectID   `bson:"city" json:"city"`
	Campus        primitive.ObjectID   `bson:"campus" json:"campus"`
	Course        primitive.ObjectID   `bson:"course" json:"course"`
	Students      []primitive.ObjectID `bson:"students" json:"students"`
	Assignments   []primitive.ObjectID `bson:"assignments" json:"assignments"`
	Quizzes       []primitive.ObjectID `bson:"quizzes" json:"quizzes"`
	CreatedBy     primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	UpdatedBy     *primitive.ObjectID  `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}
