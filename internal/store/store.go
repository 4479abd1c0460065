// Package store persists the school documents. Every collection is reached
// through the same small generic interface so the services run unchanged on
// MongoDB and on the in-memory store used for tests and local runs.
package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Collection is a typed view over one document collection. Filters use the
// MongoDB query language; the in-memory store understands equality (with
// array membership), $in and $ne.
type Collection[T any] interface {
	Insert(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Find(ctx context.Context, filter bson.M) ([]T, error)
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

const (
	AdminsCollection      = "admins"
	TeachersCollection    = "teachers"
	StudentsCollection    = "students"
	CitiesCollection      = "cities"
	CampusesCollection    = "campuses"
	CoursesCollection     = "courses"
	ClassesCollection     = "classes"
	AssignmentsCollection = "assignments"
	QuizzesCollection     = "quizzes"
)

// uniqueKeys lists the unique indexes of each collection. Compound keys
// are listed together.
var uniqueKeys = map[string][][]string{
	AdminsCollection:   {{"username"}, {"email"}},
	TeachersCollection: {{"username"}, {"email"}},
	StudentsCollection: {{"username"}, {"email"}, {"CNIC"}},
	CitiesCollection:   {{"cityName"}},
	CampusesCollection: {{"city", "name"}},
	ClassesCollection:  {{"enrollmentKey"}},
}

type Store struct {
	Admins      Collection[models.Admin]
	Teachers    Collection[models.Teacher]
	Students    Collection[models.Student]
	Cities      Collection[models.City]
	Campuses    Collection[models.Campus]
	Courses     Collection[models.Course]
	Classes     Collection[models.Class]
	Assignments Collection[models.Assignment]
	Quizzes     Collection[models.Quiz]
}

// IDsFilter matches documents whose _id is one of ids.
func IDsFilter(ids []primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
