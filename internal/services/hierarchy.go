package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/store"
	"github.com/harentsoaR/campus-api/internal/utils"
)

// HierarchyService owns cities, campuses and the course membership lists
// that tie a course to the (city, campus) pairs offering it.
type HierarchyService struct {
	store *store.Store
	now   func() time.Time
}

func NewHierarchyService(st *store.Store) *HierarchyService {
	return &HierarchyService{store: st, now: time.Now}
}

func (s *HierarchyService) AddCity(ctx context.Context, adminID primitive.ObjectID, cityName string) (*models.City, error) {
	now := s.now().UTC()
	city := &models.City{
		ID:        primitive.NewObjectID(),
		CityName:  cityName,
		CreatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Cities.Insert(ctx, city); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("City already exists")
		}
		return nil, err
	}
	return city, nil
}

func (s *HierarchyService) ListCities(ctx context.Context) ([]models.City, error) {
	return s.store.Cities.Find(ctx, bson.M{})
}

func (s *HierarchyService) GetCity(ctx context.Context, id primitive.ObjectID) (*models.City, error) {
	city, err := s.store.Cities.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("City not found")
	}
	return city, err
}

func (s *HierarchyService) AddCampus(ctx context.Context, adminID primitive.ObjectID, name string, cityID primitive.ObjectID) (*models.Campus, error) {
	if _, err := s.GetCity(ctx, cityID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	campus := &models.Campus{
		ID:        primitive.NewObjectID(),
		Name:      name,
		City:      cityID,
		CreatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Campuses.Insert(ctx, campus); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("Campus already exists in this city")
		}
		return nil, err
	}
	return campus, nil
}

// ListCampuses returns every campus, or only those of cityID when it is set.
func (s *HierarchyService) ListCampuses(ctx context.Context, cityID *primitive.ObjectID) ([]models.Campus, error) {
	filter := bson.M{}
	if cityID != nil {
		filter["city"] = *cityID
	}
	return s.store.Campuses.Find(ctx, filter)
}

func (s *HierarchyService) GetCampus(ctx context.Context, id primitive.ObjectID) (*models.Campus, error) {
	campus, err := s.store.Campuses.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Campus not found")
	}
	return campus, err
}

func (s *HierarchyService) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, err := s.store.Courses.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Course not found")
	}
	return course, err
}

func (s *HierarchyService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.store.Courses.Find(ctx, bson.M{})
}

// AddCourseResult tells the caller whether AddCourse changed anything.
type AddCourseResult struct {
	Course  *models.Course
	Created bool // a new course document was inserted
	Changed bool // the membership lists were extended
}

// AddCourse offers the named course at (cityID, campusID). The first course
// with that name is extended; a new one is created only when none exists.
// Adding an already linked pair changes nothing.
func (s *HierarchyService) AddCourse(ctx context.Context, adminID primitive.ObjectID, name string, cityID, campusID primitive.ObjectID) (*AddCourseResult, error) {
	if _, err := s.GetCity(ctx, cityID); err != nil {
		return nil, err
	}
	campus, err := s.GetCampus(ctx, campusID)
	if err != nil {
		return nil, err
	}
	if campus.City != cityID {
		return nil, utils.BadRequest("Campus does not belong to the selected city")
	}

	now := s.now().UTC()
	existing, err := s.store.Courses.FindOne(ctx, bson.M{"name": name})
	if errors.Is(err, store.ErrNotFound) {
		course := &models.Course{
			ID:        primitive.NewObjectID(),
			Name:      name,
			City:      []primitive.ObjectID{cityID},
			Campus:    []primitive.ObjectID{campusID},
			CreatedBy: adminID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Courses.Insert(ctx, course); err != nil {
			return nil, err
		}
		return &AddCourseResult{Course: course, Created: true, Changed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	hasCity, hasCampus := existing.HasCity(cityID), existing.HasCampus(campusID)
	if hasCity && hasCampus {
		return &AddCourseResult{Course: existing}, nil
	}
	if !hasCity {
		existing.City = append(existing.City, cityID)
	}
	if !hasCampus {
		existing.Campus = append(existing.Campus, campusID)
	}
	existing.UpdatedAt = now
	if err := s.store.Courses.Replace(ctx, existing.ID, existing); err != nil {
		return nil, err
	}
	return &AddCourseResult{Course: existing, Changed: true}, nil
}

// RemoveCourseCampus unlinks a campus from a course. When it was the last
// linked campus of its city, the city is unlinked too.
func (s *HierarchyService) RemoveCourseCampus(ctx context.Context, courseID, campusID primitive.ObjectID) (*models.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	campus, err := s.GetCampus(ctx, campusID)
	if err != nil {
		return nil, err
	}
	if !course.HasCampus(campusID) {
		return nil, utils.NotFound("Campus is not linked to this course")
	}

	siblings, err := s.store.Campuses.Find(ctx, bson.M{"city": campus.City})
	if err != nil {
		return nil, err
	}
	linkedInCity := 0
	for _, sibling := range siblings {
		if course.HasCampus(sibling.ID) {
			linkedInCity++
		}
	}

	course.Campus = without(course.Campus, campusID)
	if linkedInCity <= 1 {
		course.City = without(course.City, campus.City)
	}
	course.UpdatedAt = s.now().UTC()
	if err := s.store.Courses.Replace(ctx, course.ID, course); err != nil {
		return nil, err
	}
	return course, nil
}

// RemoveCourseCity unlinks a city and every linked campus located in it.
func (s *HierarchyService) RemoveCourseCity(ctx context.Context, courseID, cityID primitive.ObjectID) (*models.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasCity(cityID) {
		return nil, utils.NotFound("City is not linked to this course")
	}

	campuses, err := s.store.Campuses.Find(ctx, bson.M{"city": cityID})
	if err != nil {
		return nil, err
	}
	for _, campus := range campuses {
		course.Campus = without(course.Campus, campus.ID)
	}
	course.City = without(course.City, cityID)
	course.UpdatedAt = s.now().UTC()
	if err := s.store.Courses.Replace(ctx, course.ID, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *HierarchyService) RenameCourse(ctx context.Context, courseID primitive.ObjectID, name string) (*models.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	other, err := s.store.Courses.FindOne(ctx, bson.M{"name": name})
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	case other.ID != course.ID:
		return nil, utils.Conflict("A course with this name already exists")
	}

	course.Name = name
	course.UpdatedAt = s.now().UTC()
	if err := s.store.Courses.Replace(ctx, course.ID, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes the course document only; classes and teachers that
// reference it are left as they are.
func (s *HierarchyService) DeleteCourse(ctx context.Context, courseID primitive.ObjectID) error {
	err := s.store.Courses.Delete(ctx, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound("Course not found")
	}
	return err
}

// ValidatePlacement checks that city, campus and course exist and fit
// together: the campus lies in the city and the course is offered there.
func (s *HierarchyService) ValidatePlacement(ctx context.Context, cityID, campusID, courseID primitive.ObjectID) error {
	if _, err := s.GetCity(ctx, cityID); err != nil {
		return err
	}
	campus, err := s.GetCampus(ctx, campusID)
	if err != nil {
		return err
	}
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if campus.City != cityID {
		return utils.BadRequest("Campus does not belong to the selected city")
	}
	if !course.HasCampus(campusID) {
		return utils.BadRequest("Course is not offered at the selected campus")
	}
	return nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	kept := slices.DeleteFunc(slices.Clone(ids), func(existing primitive.ObjectID) bool {
		return existing == id
	})
	if kept == nil {
		return []primitive.ObjectID{}
	}
	return kept
}
