package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSecuredRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w, body := s.json(t, http.MethodGet, "/api/admin/getCities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "null", string(body.Data))

	w, _ = s.json(t, http.MethodGet, "/api/admin/getCities", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokensAreScopedToRole(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)

	w, _ := s.json(t, http.MethodGet, "/api/teacher/getCurrentTeacher", admin.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginAndCurrent(t *testing.T) {
	s := newTestServer(t)

	w, body := s.json(t, http.MethodPost, "/api/admin/login", "", map[string]string{"username": seedUsername, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "username or password is incorrect", body.Message)

	w, body = s.json(t, http.MethodPost, "/api/admin/login", "", map[string]string{"username": seedUsername, "password": seedPassword})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.NotContains(t, string(body.Data), "password")
	assert.NotEmpty(t, w.Result().Cookies())

	tokens := decode[tokensData](t, body.Data)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/getCurrentAdmin", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: tokens.AccessToken})
	w, body = s.do(t, req, "")
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}](t, body.Data)
	assert.Equal(t, seedUsername, current.Username)
	assert.Equal(t, "admin", current.Role)
}

func TestValidationErrorsUseEnvelope(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)

	w, body := s.json(t, http.MethodPost, "/api/admin/addCity", admin.AccessToken, map[string]string{"cityName": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cityName is required", body.Message)
	assert.False(t, body.Success)

	w, _ = s.json(t, http.MethodPut, "/api/admin/editCourse/not-an-id", admin.AccessToken, map[string]string{"courseName": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type courseData struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	City []struct {
		ID       string `json:"_id"`
		CityName string `json:"cityName"`
	} `json:"city"`
	Campus []struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"campus"`
	CreatedBy *struct {
		Username string `json:"username"`
	} `json:"createdBy"`
}

func TestAddCourseStatusCodes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)
	cityID, campusID, courseID := s.hierarchy(t, admin.AccessToken, "Lahore")

	w, body := s.json(t, http.MethodPost, "/api/admin/addCourse", admin.AccessToken, map[string]string{
		"name": "Web Development", "cityId": cityID, "campusId": campusID,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)

	course := decode[courseData](t, body.Data)
	assert.Equal(t, courseID, course.ID)
	require.Len(t, course.City, 1)
	assert.Equal(t, "Lahore", course.City[0].CityName)
	require.Len(t, course.Campus, 1)
	assert.Equal(t, "Lahore Main", course.Campus[0].Name)
	require.NotNil(t, course.CreatedBy)
	assert.Equal(t, seedUsername, course.CreatedBy.Username)

	w, body = s.json(t, http.MethodPut, "/api/admin/editCourse/"+courseID, admin.AccessToken, map[string]string{"courseName": "Frontend"})
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	course = decode[courseData](t, body.Data)
	assert.Equal(t, "Frontend", course.Name)
	require.Len(t, course.City, 1)
	assert.Equal(t, "Lahore", course.City[0].CityName)

	w, _ = s.json(t, http.MethodPost, "/api/admin/addCity", admin.AccessToken, map[string]string{"cityName": "Lahore"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoveCourseCampusRoute(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)
	cityID, campusID, courseID := s.hierarchy(t, admin.AccessToken, "Lahore")

	w, body := s.json(t, http.MethodPost, "/api/admin/addCampus", admin.AccessToken, map[string]string{"name": "Lahore North", "cityId": cityID})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	northID := decode[idData](t, body.Data).ID
	w, body = s.json(t, http.MethodPost, "/api/admin/addCourse", admin.AccessToken, map[string]string{
		"name": "Web Development", "cityId": cityID, "campusId": northID,
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)

	w, body = s.json(t, http.MethodDelete, "/api/admin/deleteCourseCampus/"+campusID+"/"+courseID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	course := decode[courseData](t, body.Data)
	require.Len(t, course.City, 1)
	assert.Equal(t, "Lahore", course.City[0].CityName)
	require.Len(t, course.Campus, 1)
	assert.Equal(t, "Lahore North", course.Campus[0].Name)

	w, body = s.json(t, http.MethodDelete, "/api/admin/deleteCourseCampus/"+northID+"/"+courseID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	course = decode[courseData](t, body.Data)
	assert.Empty(t, course.City)
	assert.Empty(t, course.Campus)
	require.NotNil(t, course.CreatedBy)
}

func TestRemoveCourseCityRoute(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)
	_, _, courseID := s.hierarchy(t, admin.AccessToken, "Lahore")
	karachiID, _, _ := s.hierarchy(t, admin.AccessToken, "Karachi")

	w, body := s.json(t, http.MethodDelete, "/api/admin/deleteCourseCity/"+karachiID+"/"+courseID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	course := decode[courseData](t, body.Data)
	require.Len(t, course.City, 1)
	assert.Equal(t, "Lahore", course.City[0].CityName)
	require.Len(t, course.Campus, 1)
	assert.Equal(t, "Lahore Main", course.Campus[0].Name)
}

func TestRegisterAndRefreshStudent(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)
	cityID, campusID, courseID := s.hierarchy(t, admin.AccessToken, "Lahore")

	w, _ := s.multipart(t, "/api/student/register", "", studentFields("sam", cityID, campusID, courseID), false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := s.multipart(t, "/api/student/register", "", studentFields("sam", cityID, campusID, courseID), true)
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	registered := decode[tokensData](t, body.Data)
	assert.NotEmpty(t, registered.AccessToken)

	w, _ = s.multipart(t, "/api/student/register", "", studentFields("sam", cityID, campusID, courseID), true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = s.json(t, http.MethodPost, "/api/student/refreshStudentAccessToken", "", map[string]string{"refreshToken": registered.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	rotated := decode[tokensData](t, body.Data)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	w, body = s.json(t, http.MethodPost, "/api/student/refreshStudentAccessToken", "", map[string]string{"refreshToken": registered.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Refresh token is expired or used", body.Message)

	w, _ = s.json(t, http.MethodPost, "/api/student/logout", rotated.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(t, http.MethodPost, "/api/student/refreshStudentAccessToken", "", map[string]string{"refreshToken": rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClassLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)
	cityID, campusID, courseID := s.hierarchy(t, admin.AccessToken, "Lahore")

	w, body := s.multipart(t, "/api/teacher/register", "", teacherFields("ada", cityID, campusID, courseID), true)
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	teacherID := decode[idData](t, body.Data).ID
	teacher := s.login(t, "teacher", "ada", "secret123")

	w, body = s.multipart(t, "/api/student/register", "", studentFields("sam", cityID, campusID, courseID), true)
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	student := decode[tokensData](t, body.Data)

	w, body = s.json(t, http.MethodPost, "/api/admin/addClass", admin.AccessToken, map[string]any{
		"name": "Morning", "enrollmentKey": "KEY-1", "batch": 10,
		"teacherId": teacherID, "cityId": cityID, "campusId": campusID, "courseId": courseID,
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	classID := decode[idData](t, body.Data).ID

	w, body = s.json(t, http.MethodPost, "/api/student/enrollInClass", student.AccessToken, map[string]string{"enrollmentKey": "KEY-1"})
	require.Equal(t, http.StatusOK, w.Code, body.Message)

	w, body = s.json(t, http.MethodPost, "/api/teacher/createAssignment", teacher.AccessToken, map[string]any{
		"title": "Landing page", "classId": classID, "totalMarks": 10,
		"lastDate": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	assignmentID := decode[idData](t, body.Data).ID

	w, body = s.json(t, http.MethodPost, "/api/student/submitAssignment/"+assignmentID, student.AccessToken, map[string]string{"link": "https://github.com/sam/landing"})
	require.Equal(t, http.StatusOK, w.Code, body.Message)

	enrolled, err := s.store.Students.FindOne(context.Background(), bson.M{"username": "sam"})
	require.NoError(t, err)
	studentID := enrolled.ID.Hex()

	w, body = s.json(t, http.MethodPut, "/api/teacher/assignMarks/"+assignmentID, teacher.AccessToken, map[string]any{"studentId": studentID, "marks": 7})
	require.Equal(t, http.StatusOK, w.Code, body.Message)

	w, body = s.json(t, http.MethodGet, "/api/teacher/getStudentPerformance/"+studentID+"/"+classID, teacher.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	performance := decode[struct {
		TotalAssignments          int `json:"totalAssignments"`
		SubmittedAssignmentsCount int `json:"submittedAssignmentsCount"`
	}](t, body.Data)
	assert.Equal(t, 1, performance.TotalAssignments)
	assert.Equal(t, 1, performance.SubmittedAssignmentsCount)

	w, body = s.json(t, http.MethodGet, "/api/student/getClass", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	assert.Contains(t, string(body.Data), "Landing page")

	w, _ = s.json(t, http.MethodDelete, "/api/admin/deleteStudent/"+studentID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = s.json(t, http.MethodDelete, "/api/admin/deleteTeacher/"+teacherID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = s.json(t, http.MethodDelete, "/api/admin/deleteClass/"+classID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminCannotDeleteItself(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", seedUsername, seedPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/getCurrentAdmin", nil)
	w, body := s.do(t, req, admin.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	self := decode[idData](t, body.Data).ID

	w, _ = s.json(t, http.MethodDelete, "/api/admin/deleteAdmin/"+self, admin.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
