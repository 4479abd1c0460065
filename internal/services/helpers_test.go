package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/storage"
	"github.com/harentsoaR/campus-api/internal/store"
	"github.com/harentsoaR/campus-api/internal/utils"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []primitive.ObjectID
}

func (n *recordingNotifier) SendClassAssignmentSMS(teacher *models.Teacher, _ *models.Class) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, teacher.ID)
}

type testEnv struct {
	store      *store.Store
	tokens     *utils.TokenIssuer
	admins     *AdminAccounts
	teachers   *TeacherAccounts
	students   *StudentAccounts
	hierarchy  *HierarchyService
	populator  *Populator
	classes    *ClassService
	coursework *CourseworkService
	notifier   *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	tokens, err := utils.NewTokenIssuer(utils.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)
	images, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hierarchy := NewHierarchyService(st)
	populator := NewPopulator(st)
	notifier := &recordingNotifier{}
	classes := NewClassService(st, hierarchy, populator, notifier)

	return &testEnv{
		store:      st,
		tokens:     tokens,
		admins:     NewAccountService[models.Admin, *models.Admin](st.Admins, tokens, images, logger, models.RoleAdmin),
		teachers:   NewAccountService[models.Teacher, *models.Teacher](st.Teachers, tokens, images, logger, models.RoleTeacher),
		students:   NewAccountService[models.Student, *models.Student](st.Students, tokens, images, logger, models.RoleStudent),
		hierarchy:  hierarchy,
		populator:  populator,
		classes:    classes,
		coursework: NewCourseworkService(st, classes),
		notifier:   notifier,
	}
}

func profileUpload() *Upload {
	return &Upload{Filename: "me.png", Content: strings.NewReader("png bytes")}
}

func (e *testEnv) registerTeacher(t *testing.T, username string) *models.Teacher {
	t.Helper()
	teacher := &models.Teacher{User: models.User{
		FullName:    "Teacher " + username,
		Username:    username,
		Email:       username + "@school.test",
		PhoneNumber: "+10000000000",
	}}
	require.NoError(t, e.teachers.Register(context.Background(), teacher, "secret123", profileUpload()))
	return teacher
}

func (e *testEnv) registerStudent(t *testing.T, username string) *models.Student {
	t.Helper()
	student := &models.Student{
		User: models.User{
			FullName: "Student " + username,
			Username: username,
			Email:    username + "@school.test",
		},
		CNIC:   "cnic-" + username,
		RollNo: "roll-" + username,
	}
	require.NoError(t, e.students.Register(context.Background(), student, "secret123", profileUpload(),
		UniqueCheck{Field: "CNIC", Value: student.CNIC, Label: "CNIC"}))
	return student
}

// placement is a city with one campus offering one course.
type placement struct {
	city   *models.City
	campus *models.Campus
	course *models.Course
}

func (e *testEnv) newPlacement(t *testing.T, cityName string) placement {
	t.Helper()
	ctx := context.Background()
	admin := primitive.NewObjectID()

	city, err := e.hierarchy.AddCity(ctx, admin, cityName)
	require.NoError(t, err)
	campus, err := e.hierarchy.AddCampus(ctx, admin, cityName+" Main", city.ID)
	require.NoError(t, err)
	result, err := e.hierarchy.AddCourse(ctx, admin, "Web Development", city.ID, campus.ID)
	require.NoError(t, err)
	return placement{city: city, campus: campus, course: result.Course}
}

func (e *testEnv) newClass(t *testing.T, p placement, teacherID primitive.ObjectID, key string) *models.Class {
	t.Helper()
	class, err := e.classes.Create(context.Background(), primitive.NewObjectID(), ClassInput{
		Name:          "Class " + key,
		EnrollmentKey: key,
		Batch:         10,
		TeacherID:     teacherID,
		CityID:        p.city.ID,
		CampusID:      p.campus.ID,
		CourseID:      p.course.ID,
	})
	require.NoError(t, err)
	return class
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var apiErr *utils.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
}
