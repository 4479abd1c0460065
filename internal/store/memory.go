package store

import (
	"context"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
)

// memoryCollection keeps documents as BSON so that filters see exactly the
// field names and types MongoDB would.
type memoryCollection[T any] struct {
	sync.RWMutex
	name   string
	unique [][]string
	order  []primitive.ObjectID
	docs   map[primitive.ObjectID]bson.Raw
}

var _ Collection[models.Admin] = (*memoryCollection[models.Admin])(nil) // interface compliance check

func newMemoryCollection[T any](name string) *memoryCollection[T] {
	return &memoryCollection[T]{
		name:   name,
		unique: uniqueKeys[name],
		docs:   make(map[primitive.ObjectID]bson.Raw),
	}
}

// NewMemoryStore returns a Store that lives in process memory.
func NewMemoryStore() *Store {
	return &Store{
		Admins:      newMemoryCollection[models.Admin](AdminsCollection),
		Teachers:    newMemoryCollection[models.Teacher](TeachersCollection),
		Students:    newMemoryCollection[models.Student](StudentsCollection),
		Cities:      newMemoryCollection[models.City](CitiesCollection),
		Campuses:    newMemoryCollection[models.Campus](CampusesCollection),
		Courses:     newMemoryCollection[models.Course](CoursesCollection),
		Classes:     newMemoryCollection[models.Class](ClassesCollection),
		Assignments: newMemoryCollection[models.Assignment](AssignmentsCollection),
		Quizzes:     newMemoryCollection[models.Quiz](QuizzesCollection),
	}
}

func (m *memoryCollection[T]) encode(doc *T) (bson.Raw, bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "encoding %s document", m.name)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, nil, errors.Wrapf(err, "encoding %s document", m.name)
	}
	return raw, fields, nil
}

func (m *memoryCollection[T]) fields(raw bson.Raw) bson.M {
	var fields bson.M
	// raw was produced by bson.Marshal, decoding it back cannot fail
	_ = bson.Unmarshal(raw, &fields)
	return fields
}

// checkUnique must be called with the lock held.
func (m *memoryCollection[T]) checkUnique(fields bson.M, self primitive.ObjectID) error {
	for _, keys := range m.unique {
		for _, id := range m.order {
			if id == self {
				continue
			}
			existing := m.fields(m.docs[id])
			same := true
			for _, key := range keys {
				if !reflect.DeepEqual(existing[key], fields[key]) {
					same = false
					break
				}
			}
			if same {
				return errors.Wrapf(ErrDuplicate, "%v in %s", keys, m.name)
			}
		}
	}
	return nil
}

func (m *memoryCollection[T]) Insert(_ context.Context, doc *T) error {
	raw, fields, err := m.encode(doc)
	if err != nil {
		return err
	}
	id, ok := fields["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		return errors.Errorf("inserting into %s: document has no _id", m.name)
	}

	m.Lock()
	defer m.Unlock()
	if _, exists := m.docs[id]; exists {
		return errors.Wrapf(ErrDuplicate, "_id in %s", m.name)
	}
	if err := m.checkUnique(fields, id); err != nil {
		return err
	}
	m.docs[id] = raw
	m.order = append(m.order, id)
	return nil
}

func (m *memoryCollection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *memoryCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	docs, err := m.find(filter, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "finding in %s", m.name)
	}
	return &docs[0], nil
}

func (m *memoryCollection[T]) Find(_ context.Context, filter bson.M) ([]T, error) {
	return m.find(filter, 0)
}

func (m *memoryCollection[T]) find(filter bson.M, limit int) ([]T, error) {
	m.RLock()
	defer m.RUnlock()

	docs := make([]T, 0)
	for _, id := range m.order {
		raw := m.docs[id]
		if !matches(m.fields(raw), filter) {
			continue
		}
		var doc T
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", m.name)
		}
		docs = append(docs, doc)
		if limit > 0 && len(docs) == limit {
			break
		}
	}
	return docs, nil
}

func (m *memoryCollection[T]) Replace(_ context.Context, id primitive.ObjectID, doc *T) error {
	raw, fields, err := m.encode(doc)
	if err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()
	if _, ok := m.docs[id]; !ok {
		return errors.Wrapf(ErrNotFound, "replacing in %s", m.name)
	}
	if err := m.checkUnique(fields, id); err != nil {
		return err
	}
	m.docs[id] = raw
	return nil
}

func (m *memoryCollection[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.docs[id]; !ok {
		return errors.Wrapf(ErrNotFound, "deleting from %s", m.name)
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryCollection[T]) Count(_ context.Context, filter bson.M) (int64, error) {
	docs, err := m.find(filter, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		got := doc[key]
		if ops, ok := want.(bson.M); ok {
			if !matchOperators(got, ops) {
				return false
			}
			continue
		}
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

func matchOperators(got any, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			candidates := reflect.ValueOf(arg)
			if candidates.Kind() != reflect.Slice {
				return false
			}
			found := false
			for i := 0; i < candidates.Len(); i++ {
				if matchValue(got, candidates.Index(i).Interface()) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$ne":
			if matchValue(got, arg) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// matchValue follows MongoDB equality: an array field matches when any of
// its elements equals want.
func matchValue(got, want any) bool {
	if arr, ok := got.(primitive.A); ok {
		for _, v := range arr {
			if reflect.DeepEqual(v, want) {
				return true
			}
		}
		return false
	}
	return reflect.DeepEqual(got, want)
}
