package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/store"
)

// Populator resolves id references into the projections the API returns.
// A dangling reference resolves to nil (or is left out of a list).
type Populator struct {
	store *store.Store
}

func NewPopulator(st *store.Store) *Populator {
	return &Populator{store: st}
}

func missing(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func (p *Populator) cityRef(ctx context.Context, id primitive.ObjectID) (*models.CityRef, error) {
	if id.IsZero() {
		return nil, nil
	}
	city, err := p.store.Cities.FindByID(ctx, id)
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.CityRef{ID: city.ID, CityName: city.CityName}, nil
}

func (p *Populator) cityRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.CityRef, error) {
	refs := make([]models.CityRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	cities, err := p.store.Cities.Find(ctx, store.IDsFilter(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.City, len(cities))
	for _, city := range cities {
		byID[city.ID] = city
	}
	for _, id := range ids {
		if city, ok := byID[id]; ok {
			refs = append(refs, models.CityRef{ID: city.ID, CityName: city.CityName})
		}
	}
	return refs, nil
}

func (p *Populator) campusRef(ctx context.Context, id primitive.ObjectID) (*models.CampusRef, error) {
	if id.IsZero() {
		return nil, nil
	}
	campus, err := p.store.Campuses.FindByID(ctx, id)
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.CampusRef{ID: campus.ID, Name: campus.Name}, nil
}

func (p *Populator) campusRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.CampusRef, error) {
	refs := make([]models.CampusRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	campuses, err := p.store.Campuses.Find(ctx, store.IDsFilter(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Campus, len(campuses))
	for _, campus := range campuses {
		byID[campus.ID] = campus
	}
	for _, id := range ids {
		if campus, ok := byID[id]; ok {
			refs = append(refs, models.CampusRef{ID: campus.ID, Name: campus.Name})
		}
	}
	return refs, nil
}

func (p *Populator) courseRef(ctx context.Context, id primitive.ObjectID) (*models.CourseRef, error) {
	if id.IsZero() {
		return nil, nil
	}
	course, err := p.store.Courses.FindByID(ctx, id)
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.CourseRef{ID: course.ID, Name: course.Name}, nil
}

func (p *Populator) adminRef(ctx context.Context, id *primitive.ObjectID) (*models.AdminRef, error) {
	if id == nil || id.IsZero() {
		return nil, nil
	}
	admin, err := p.store.Admins.FindByID(ctx, *id)
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	city, err := p.cityRef(ctx, admin.City)
	if err != nil {
		return nil, err
	}
	campus, err := p.campusRef(ctx, admin.Campus)
	if err != nil {
		return nil, err
	}
	return &models.AdminRef{
		ID:          admin.ID,
		FullName:    admin.FullName,
		Username:    admin.Username,
		Email:       admin.Email,
		PhoneNumber: admin.PhoneNumber,
		Gender:      admin.Gender,
		City:        city,
		Campus:      campus,
	}, nil
}

func (p *Populator) teacherRef(ctx context.Context, id primitive.ObjectID) (*models.TeacherRef, error) {
	if id.IsZero() {
		return nil, nil
	}
	teacher, err := p.store.Teachers.FindByID(ctx, id)
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	city, err := p.cityRef(ctx, teacher.City)
	if err != nil {
		return nil, err
	}
	return &models.TeacherRef{
		ID:          teacher.ID,
		FullName:    teacher.FullName,
		Email:       teacher.Email,
		PhoneNumber: teacher.PhoneNumber,
		Gender:      teacher.Gender,
		City:        city,
	}, nil
}

func (p *Populator) classRef(ctx context.Context, class *models.Class, withTeacher bool) (models.ClassRef, error) {
	ref := models.ClassRef{ID: class.ID, Name: class.Name, Batch: class.Batch}
	if withTeacher {
		teacher, err := p.teacherRef(ctx, class.Teacher)
		if err != nil {
			return ref, err
		}
		if teacher != nil {
			ref.Teacher = &models.TeacherRef{ID: teacher.ID, FullName: teacher.FullName}
		}
	}
	return ref, nil
}

func (p *Populator) Admin(ctx context.Context, admin *models.Admin) (*models.AdminView, error) {
	view := &models.AdminView{User: admin.User}
	var err error
	if view.City, err = p.cityRef(ctx, admin.City); err != nil {
		return nil, err
	}
	if view.Campus, err = p.campusRef(ctx, admin.Campus); err != nil {
		return nil, err
	}
	if view.CreatedBy, err = p.adminRef(ctx, admin.CreatedBy); err != nil {
		return nil, err
	}
	if view.UpdatedBy, err = p.adminRef(ctx, admin.UpdatedBy); err != nil {
		return nil, err
	}
	return view, nil
}

func (p *Populator) Admins(ctx context.Context, admins []models.Admin) ([]models.AdminView, error) {
	views := make([]models.AdminView, 0, len(admins))
	for i := range admins {
		view, err := p.Admin(ctx, &admins[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (p *Populator) Teacher(ctx context.Context, teacher *models.Teacher) (*models.TeacherView, error) {
	view := &models.TeacherView{User: teacher.User}
	var err error
	if view.City, err = p.cityRef(ctx, teacher.City); err != nil {
		return nil, err
	}
	if view.Campus, err = p.campusRefs(ctx, teacher.Campus); err != nil {
		return nil, err
	}
	if view.Course, err = p.courseRef(ctx, teacher.Course); err != nil {
		return nil, err
	}
	view.InstructorOfClass = make([]models.ClassRef, 0, len(teacher.InstructorOfClass))
	if len(teacher.InstructorOfClass) > 0 {
		classes, err := p.store.Classes.Find(ctx, store.IDsFilter(teacher.InstructorOfClass))
		if err != nil {
			return nil, err
		}
		for i := range classes {
			ref, _ := p.classRef(ctx, &classes[i], false)
			view.InstructorOfClass = append(view.InstructorOfClass, ref)
		}
	}
	return view, nil
}

func (p *Populator) Teachers(ctx context.Context, teachers []models.Teacher) ([]models.TeacherView, error) {
	views := make([]models.TeacherView, 0, len(teachers))
	for i := range teachers {
		view, err := p.Teacher(ctx, &teachers[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (p *Populator) Student(ctx context.Context, student *models.Student) (*models.StudentView, error) {
	view := &models.StudentView{
		User:              student.User,
		FatherName:        student.FatherName,
		CNIC:              student.CNIC,
		Address:           student.Address,
		DOB:               student.DOB,
		LastQualification: student.LastQualification,
		RollNo:            student.RollNo,
	}
	var err error
	if view.City, err = p.cityRef(ctx, student.City); err != nil {
		return nil, err
	}
	if view.Campus, err = p.campusRef(ctx, student.Campus); err != nil {
		return nil, err
	}
	if view.Course, err = p.courseRef(ctx, student.Course); err != nil {
		return nil, err
	}
	if student.EnrolledInClass != nil {
		class, err := p.store.Classes.FindByID(ctx, *student.EnrolledInClass)
		switch {
		case missing(err):
		case err != nil:
			return nil, err
		default:
			ref, err := p.classRef(ctx, class, true)
			if err != nil {
				return nil, err
			}
			view.EnrolledInClass = &ref
		}
	}
	return view, nil
}

func (p *Populator) Students(ctx context.Context, students []models.Student) ([]models.StudentView, error) {
	views := make([]models.StudentView, 0, len(students))
	for i := range students {
		view, err := p.Student(ctx, &students[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (p *Populator) Course(ctx context.Context, course *models.Course) (*models.CourseView, error) {
	view := &models.CourseView{
		ID:        course.ID,
		Name:      course.Name,
		CreatedAt: course.CreatedAt,
		UpdatedAt: course.UpdatedAt,
	}
	var err error
	if view.City, err = p.cityRefs(ctx, course.City); err != nil {
		return nil, err
	}
	if view.Campus, err = p.campusRefs(ctx, course.Campus); err != nil {
		return nil, err
	}
	if view.CreatedBy, err = p.adminRef(ctx, &course.CreatedBy); err != nil {
		return nil, err
	}
	return view, nil
}

func (p *Populator) Courses(ctx context.Context, courses []models.Course) ([]models.CourseView, error) {
	views := make([]models.CourseView, 0, len(courses))
	for i := range courses {
		view, err := p.Course(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (p *Populator) Class(ctx context.Context, class *models.Class) (*models.ClassView, error) {
	view := &models.ClassView{
		ID:            class.ID,
		Name:          class.Name,
		EnrollmentKey: class.EnrollmentKey,
		Batch:         class.Batch,
		Students:      nonNil(class.Students),
		Assignments:   nonNil(class.Assignments),
		Quizzes:       nonNil(class.Quizzes),
		CreatedAt:     class.CreatedAt,
		UpdatedAt:     class.UpdatedAt,
	}
	var err error
	if view.Teacher, err = p.teacherRef(ctx, class.Teacher); err != nil {
		return nil, err
	}
	if view.City, err = p.cityRef(ctx, class.City); err != nil {
		return nil, err
	}
	if view.Campus, err = p.campusRef(ctx, class.Campus); err != nil {
		return nil, err
	}
	if view.Course, err = p.courseRef(ctx, class.Course); err != nil {
		return nil, err
	}
	if view.CreatedBy, err = p.adminRef(ctx, &class.CreatedBy); err != nil {
		return nil, err
	}
	if view.UpdatedBy, err = p.adminRef(ctx, class.UpdatedBy); err != nil {
		return nil, err
	}
	return view, nil
}

func (p *Populator) Classes(ctx context.Context, classes []models.Class) ([]models.ClassView, error) {
	views := make([]models.ClassView, 0, len(classes))
	for i := range classes {
		view, err := p.Class(ctx, &classes[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
