package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/campus-api/internal/models"
)

type mongoCollection[T any] struct {
	coll *mongo.Collection
}

var _ Collection[models.Admin] = (*mongoCollection[models.Admin])(nil) // interface compliance check

func newMongoCollection[T any](db *mongo.Database, name string) *mongoCollection[T] {
	return &mongoCollection[T]{coll: db.Collection(name)}
}

// NewMongoStore wires every collection to the given database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Admins:      newMongoCollection[models.Admin](db, AdminsCollection),
		Teachers:    newMongoCollection[models.Teacher](db, TeachersCollection),
		Students:    newMongoCollection[models.Student](db, StudentsCollection),
		Cities:      newMongoCollection[models.City](db, CitiesCollection),
		Campuses:    newMongoCollection[models.Campus](db, CampusesCollection),
		Courses:     newMongoCollection[models.Course](db, CoursesCollection),
		Classes:     newMongoCollection[models.Class](db, ClassesCollection),
		Assignments: newMongoCollection[models.Assignment](db, AssignmentsCollection),
		Quizzes:     newMongoCollection[models.Quiz](db, QuizzesCollection),
	}
}

// ConnectMongo connects, pings the server and ensures the indexes of the
// named database. The client is disconnected again if any step fails.
func ConnectMongo(ctx context.Context, opts *options.ClientOptions, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	db := client.Database(database)
	if err = client.Ping(ctx, nil); err != nil {
		err = errors.Wrap(err, "pinging mongo")
	} else if err = EnsureIndexes(ctx, db); err != nil {
		err = errors.Wrap(err, "ensuring indexes")
	}
	if err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, nil, err
	}
	return client, db, nil
}

// EnsureIndexes creates the unique indexes the services rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, keySets := range uniqueKeys {
		indexModels := make([]mongo.IndexModel, 0, len(keySets))
		for _, keys := range keySets {
			doc := bson.D{}
			for _, key := range keys {
				doc = append(doc, bson.E{Key: key, Value: 1})
			}
			indexModels = append(indexModels, mongo.IndexModel{Keys: doc, Options: options.Index().SetUnique(true)})
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexModels); err != nil {
			return errors.Wrapf(err, "creating indexes on %s", name)
		}
	}
	return nil
}

func (m *mongoCollection[T]) wrap(err error, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(ErrDuplicate, "%s %s", action, m.coll.Name())
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrapf(ErrNotFound, "%s %s", action, m.coll.Name())
	}
	return errors.Wrapf(err, "%s %s", action, m.coll.Name())
}

func (m *mongoCollection[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return m.wrap(err, "inserting into")
	}
	return nil
}

func (m *mongoCollection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *mongoCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := m.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, m.wrap(err, "finding in")
	}
	return &doc, nil
}

func (m *mongoCollection[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, m.wrap(err, "querying")
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, m.wrap(err, "decoding")
	}
	return docs, nil
}

func (m *mongoCollection[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	result, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return m.wrap(err, "replacing in")
	}
	if result.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "replacing in %s", m.coll.Name())
	}
	return nil
}

func (m *mongoCollection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return m.wrap(err, "deleting from")
	}
	if result.DeletedCount == 0 {
		return errors.Wrapf(ErrNotFound, "deleting from %s", m.coll.Name())
	}
	return nil
}

func (m *mongoCollection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, m.wrap(err, "counting")
	}
	return n, nil
}
