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

// ClassNotifier is told when a teacher is put in charge of a class.
type ClassNotifier interface {
	SendClassAssignmentSMS(teacher *models.Teacher, class *models.Class)
}

type ClassService struct {
	store     *store.Store
	hierarchy *HierarchyService
	populator *Populator
	notifier  ClassNotifier
	now       func() time.Time
}

func NewClassService(st *store.Store, hierarchy *HierarchyService, populator *Populator, notifier ClassNotifier) *ClassService {
	return &ClassService{
		store:     st,
		hierarchy: hierarchy,
		populator: populator,
		notifier:  notifier,
		now:       time.Now,
	}
}

type ClassInput struct {
	Name          string
	EnrollmentKey string
	Batch         int
	TeacherID     primitive.ObjectID
	CityID        primitive.ObjectID
	CampusID      primitive.ObjectID
	CourseID      primitive.ObjectID
}

// ClassPatch carries the fields an admin may change; nil means unchanged.
type ClassPatch struct {
	Name          *string
	EnrollmentKey *string
	Batch         *int
	TeacherID     *primitive.ObjectID
	CityID        *primitive.ObjectID
	CampusID      *primitive.ObjectID
	CourseID      *primitive.ObjectID
}

func (s *ClassService) Get(ctx context.Context, id primitive.ObjectID) (*models.Class, error) {
	class, err := s.store.Classes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Class not found")
	}
	return class, err
}

func (s *ClassService) getTeacher(ctx context.Context, id primitive.ObjectID) (*models.Teacher, error) {
	teacher, err := s.store.Teachers.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Teacher not found")
	}
	return teacher, err
}

func (s *ClassService) checkEnrollmentKey(ctx context.Context, key string, self primitive.ObjectID) error {
	existing, err := s.store.Classes.FindOne(ctx, bson.M{"enrollmentKey": key})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return utils.Conflict("Enrollment Key already exists")
	}
	return nil
}

// assignTeacher records the class on the teacher, adds the class campus to
// the teacher's campuses and marks the teacher verified.
func (s *ClassService) assignTeacher(ctx context.Context, teacher *models.Teacher, class *models.Class) error {
	if !slices.Contains(teacher.InstructorOfClass, class.ID) {
		teacher.InstructorOfClass = append(teacher.InstructorOfClass, class.ID)
	}
	if !slices.Contains(teacher.Campus, class.Campus) {
		teacher.Campus = append(teacher.Campus, class.Campus)
	}
	teacher.IsVerified = true
	teacher.UpdatedAt = s.now().UTC()
	return s.store.Teachers.Replace(ctx, teacher.ID, teacher)
}

func (s *ClassService) unassignTeacher(ctx context.Context, teacherID, classID primitive.ObjectID) error {
	teacher, err := s.store.Teachers.FindByID(ctx, teacherID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	teacher.InstructorOfClass = without(teacher.InstructorOfClass, classID)
	teacher.UpdatedAt = s.now().UTC()
	return s.store.Teachers.Replace(ctx, teacher.ID, teacher)
}

// Create inserts the class and then updates the assigned teacher. The two
// writes are not atomic: if the teacher update fails the class remains.
func (s *ClassService) Create(ctx context.Context, adminID primitive.ObjectID, in ClassInput) (*models.Class, error) {
	if err := s.checkEnrollmentKey(ctx, in.EnrollmentKey, primitive.NilObjectID); err != nil {
		return nil, err
	}
	teacher, err := s.getTeacher(ctx, in.TeacherID)
	if err != nil {
		return nil, err
	}
	if err := s.hierarchy.ValidatePlacement(ctx, in.CityID, in.CampusID, in.CourseID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	class := &models.Class{
		ID:            primitive.NewObjectID(),
		Name:          in.Name,
		EnrollmentKey: in.EnrollmentKey,
		Batch:         in.Batch,
		Teacher:       in.TeacherID,
		City:          in.CityID,
		Campus:        in.CampusID,
		Course:        in.CourseID,
		Students:      []primitive.ObjectID{},
		Assignments:   []primitive.ObjectID{},
		Quizzes:       []primitive.ObjectID{},
		CreatedBy:     adminID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Classes.Insert(ctx, class); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("Enrollment Key already exists")
		}
		return nil, err
	}

	if err := s.assignTeacher(ctx, teacher, class); err != nil {
		return nil, err
	}
	s.notifier.SendClassAssignmentSMS(teacher, class)
	return class, nil
}

func (s *ClassService) Edit(ctx context.Context, adminID, classID primitive.ObjectID, patch ClassPatch) (*models.Class, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	if patch.EnrollmentKey != nil && *patch.EnrollmentKey != class.EnrollmentKey {
		if err := s.checkEnrollmentKey(ctx, *patch.EnrollmentKey, class.ID); err != nil {
			return nil, err
		}
		class.EnrollmentKey = *patch.EnrollmentKey
	}
	if patch.Name != nil {
		class.Name = *patch.Name
	}
	if patch.Batch != nil {
		class.Batch = *patch.Batch
	}

	previousCampus := class.Campus
	if patch.CityID != nil || patch.CampusID != nil || patch.CourseID != nil {
		if patch.CityID != nil {
			class.City = *patch.CityID
		}
		if patch.CampusID != nil {
			class.Campus = *patch.CampusID
		}
		if patch.CourseID != nil {
			class.Course = *patch.CourseID
		}
		if err := s.hierarchy.ValidatePlacement(ctx, class.City, class.Campus, class.Course); err != nil {
			return nil, err
		}
	}

	var newTeacher *models.Teacher
	previousTeacher := class.Teacher
	if patch.TeacherID != nil && *patch.TeacherID != class.Teacher {
		if newTeacher, err = s.getTeacher(ctx, *patch.TeacherID); err != nil {
			return nil, err
		}
		class.Teacher = newTeacher.ID
	}

	class.UpdatedBy = &adminID
	class.UpdatedAt = s.now().UTC()
	if err := s.store.Classes.Replace(ctx, class.ID, class); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("Enrollment Key already exists")
		}
		return nil, err
	}

	if newTeacher != nil {
		if err := s.unassignTeacher(ctx, previousTeacher, class.ID); err != nil {
			return nil, err
		}
		if err := s.assignTeacher(ctx, newTeacher, class); err != nil {
			return nil, err
		}
		s.notifier.SendClassAssignmentSMS(newTeacher, class)
	} else if class.Campus != previousCampus {
		teacher, err := s.getTeacher(ctx, class.Teacher)
		if err != nil {
			return nil, err
		}
		if err := s.assignTeacher(ctx, teacher, class); err != nil {
			return nil, err
		}
	}
	return class, nil
}

// Delete removes a class nobody is enrolled in and drops it from its
// teacher's list.
func (s *ClassService) Delete(ctx context.Context, classID primitive.ObjectID) error {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return err
	}
	if len(class.Students) > 0 {
		return utils.Conflict("Class will not be deleted because students are enrolled in it")
	}
	if err := s.store.Classes.Delete(ctx, classID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound("Class not found")
		}
		return err
	}
	return s.unassignTeacher(ctx, class.Teacher, class.ID)
}

func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	return s.store.Classes.Find(ctx, bson.M{})
}

func (s *ClassService) ForTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Class, error) {
	return s.store.Classes.Find(ctx, bson.M{"teacher": teacherID})
}

func (s *ClassService) TeachersByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Teacher, error) {
	return s.store.Teachers.Find(ctx, bson.M{"course": courseID})
}

// Enroll puts the student in the class holding enrollmentKey. A student
// belongs to at most one class.
func (s *ClassService) Enroll(ctx context.Context, studentID primitive.ObjectID, enrollmentKey string) (*models.Class, error) {
	student, err := s.store.Students.FindByID(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	if student.EnrolledInClass != nil {
		return nil, utils.Conflict("Student is already enrolled in a class")
	}

	class, err := s.store.Classes.FindOne(ctx, bson.M{"enrollmentKey": enrollmentKey})
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Invalid enrollment key")
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !slices.Contains(class.Students, studentID) {
		class.Students = append(class.Students, studentID)
	}
	class.UpdatedAt = now
	if err := s.store.Classes.Replace(ctx, class.ID, class); err != nil {
		return nil, err
	}

	student.EnrolledInClass = &class.ID
	student.UpdatedAt = now
	if err := s.store.Students.Replace(ctx, student.ID, student); err != nil {
		return nil, err
	}
	return class, nil
}

// StudentClass returns the class of a student with its coursework. Quiz
// answers are stripped.
func (s *ClassService) StudentClass(ctx context.Context, studentID primitive.ObjectID) (*models.StudentClassView, error) {
	student, err := s.store.Students.FindByID(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	if student.EnrolledInClass == nil {
		return nil, utils.NotFound("Student is not enrolled in any class")
	}
	class, err := s.Get(ctx, *student.EnrolledInClass)
	if err != nil {
		return nil, err
	}

	view := &models.StudentClassView{ID: class.ID, Name: class.Name, Batch: class.Batch}
	if view.Teacher, err = s.populator.teacherRef(ctx, class.Teacher); err != nil {
		return nil, err
	}
	if view.Course, err = s.populator.courseRef(ctx, class.Course); err != nil {
		return nil, err
	}
	if view.Assignments, err = s.store.Assignments.Find(ctx, bson.M{"className": class.ID}); err != nil {
		return nil, err
	}
	quizzes, err := s.store.Quizzes.Find(ctx, bson.M{"className": class.ID})
	if err != nil {
		return nil, err
	}
	view.Quizzes = make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		view.Quizzes = append(view.Quizzes, quiz.WithoutAnswers())
	}
	return view, nil
}

// Instructed loads a class and checks that teacherID instructs it.
func (s *ClassService) Instructed(ctx context.Context, teacherID, classID primitive.ObjectID) (*models.Class, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.Teacher != teacherID {
		return nil, utils.Forbidden("You are not the instructor of this class")
	}
	return class, nil
}

// Roster lists the students of a class the teacher instructs.
func (s *ClassService) Roster(ctx context.Context, teacherID, classID primitive.ObjectID) (*models.ClassRoster, error) {
	class, err := s.Instructed(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}
	roster := &models.ClassRoster{
		ID:            class.ID,
		Name:          class.Name,
		Batch:         class.Batch,
		EnrollmentKey: class.EnrollmentKey,
		Students:      []models.StudentRef{},
	}
	if len(class.Students) == 0 {
		return roster, nil
	}
	students, err := s.store.Students.Find(ctx, store.IDsFilter(class.Students))
	if err != nil {
		return nil, err
	}
	for i := range students {
		roster.Students = append(roster.Students, models.NewStudentRef(&students[i]))
	}
	return roster, nil
}
