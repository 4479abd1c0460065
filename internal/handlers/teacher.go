package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/services"
)

type registerTeacherRequest struct {
	FullName    string `form:"fullName" binding:"required,notblank"`
	Username    string `form:"username" binding:"required,notblank"`
	Email       string `form:"email" binding:"required,email"`
	Password    string `form:"password" binding:"required,min=6"`
	Gender      string `form:"gender" binding:"required,notblank"`
	PhoneNumber string `form:"phoneNumber" binding:"required,notblank"`
	City        string `form:"city" binding:"required,notblank"`
	Campus      string `form:"campus" binding:"required,notblank"`
	Course      string `form:"course" binding:"required,notblank"`
}

type assignmentRequest struct {
	Title       string    `json:"title" binding:"required,notblank"`
	Description string    `json:"description"`
	ClassID     string    `json:"classId" binding:"required,notblank"`
	LastDate    time.Time `json:"lastDate" binding:"required"`
	TotalMarks  int       `json:"totalMarks" binding:"required,gte=1"`
}

type editAssignmentRequest struct {
	Title       *string    `json:"title" binding:"omitempty,notblank"`
	Description *string    `json:"description"`
	LastDate    *time.Time `json:"lastDate"`
	TotalMarks  *int       `json:"totalMarks" binding:"omitempty,gte=1"`
}

type assignMarksRequest struct {
	StudentID string `json:"studentId" binding:"required,notblank"`
	Marks     *int   `json:"marks" binding:"required,gte=0"`
}

type quizRequest struct {
	Title       string                `json:"title" binding:"required,notblank"`
	Description string                `json:"description"`
	ClassID     string                `json:"classId" binding:"required,notblank"`
	LastDate    time.Time             `json:"lastDate" binding:"required"`
	Questions   []models.QuizQuestion `json:"questions" binding:"required,min=1,dive"`
}

func (h *Handler) teacherAccounts() accountRoutes[models.Teacher, *models.Teacher] {
	return accountRoutes[models.Teacher, *models.Teacher]{
		h:        h,
		accounts: h.Teachers,
		key:      middleware.TeacherKey,
		label:    "Teacher",
		view: func(ctx context.Context, teacher *models.Teacher) (any, error) {
			return h.Populator.Teacher(ctx, teacher)
		},
	}
}

func (h *Handler) currentTeacher(c *gin.Context) *models.Teacher {
	return middleware.Current[models.Teacher](c, middleware.TeacherKey)
}

// RegisterTeacher is public; teachers become verified once an admin puts
// them in charge of a class.
func (h *Handler) RegisterTeacher(c *gin.Context) {
	var req registerTeacherRequest
	if err := c.ShouldBind(&req); err != nil {
		failBinding(c, err)
		return
	}
	cityID, err := parseID(req.City, "city")
	if err != nil {
		fail(c, err)
		return
	}
	campusID, err := parseID(req.Campus, "campus")
	if err != nil {
		fail(c, err)
		return
	}
	courseID, err := parseID(req.Course, "course")
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.Hierarchy.ValidatePlacement(ctx, cityID, campusID, courseID); err != nil {
		fail(c, err)
		return
	}

	upload, closeUpload, err := profileUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeUpload()

	teacher := &models.Teacher{
		User: models.User{
			FullName:    strings.TrimSpace(req.FullName),
			Username:    strings.ToLower(strings.TrimSpace(req.Username)),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Gender:      strings.TrimSpace(req.Gender),
		},
		City:              cityID,
		Campus:            []primitive.ObjectID{campusID},
		Course:            courseID,
		InstructorOfClass: []primitive.ObjectID{},
	}
	if err := h.Teachers.Register(ctx, teacher, req.Password, upload); err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Teacher(ctx, teacher)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, view, "Teacher registered successfully")
}

func (h *Handler) UpdateTeacherProfileDetails(c *gin.Context) {
	var req profileDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	h.teacherAccounts().updateDetails(c, req.details(), nil)
}

func (h *Handler) GetTeacherClasses(c *gin.Context) {
	ctx := c.Request.Context()
	classes, err := h.Classes.ForTeacher(ctx, h.currentTeacher(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.Populator.Classes(ctx, classes)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, views, "Classes fetched successfully")
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	classID, err := parseID(req.ClassID, "class")
	if err != nil {
		fail(c, err)
		return
	}
	assignment, err := h.Coursework.CreateAssignment(c.Request.Context(), h.currentTeacher(c).ID, services.AssignmentInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ClassID:     classID,
		LastDate:    req.LastDate,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, assignment, "Assignment created successfully")
}

func (h *Handler) GetCreatedAssignments(c *gin.Context) {
	assignments, err := h.Coursework.AssignmentsCreatedBy(c.Request.Context(), h.currentTeacher(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, assignments, "Assignments fetched successfully")
}

func (h *Handler) EditAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	var req editAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	assignment, err := h.Coursework.EditAssignment(c.Request.Context(), h.currentTeacher(c).ID, assignmentID, services.AssignmentPatch{
		Title:       req.Title,
		Description: req.Description,
		LastDate:    req.LastDate,
		TotalMarks:  req.TotalMarks,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, assignment, "Assignment updated successfully")
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	if err := h.Coursework.DeleteAssignment(c.Request.Context(), h.currentTeacher(c).ID, assignmentID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Assignment deleted successfully")
}

func (h *Handler) GetStudentsSubmittedAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	submissions, err := h.Coursework.Submitted(c.Request.Context(), h.currentTeacher(c).ID, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, submissions, "Submissions fetched successfully")
}

func (h *Handler) GetStudentsNotSubmittedAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	students, err := h.Coursework.NotSubmitted(c.Request.Context(), h.currentTeacher(c).ID, assignmentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, students, "Students fetched successfully")
}

func (h *Handler) AssignMarks(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	var req assignMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	studentID, err := parseID(req.StudentID, "student")
	if err != nil {
		fail(c, err)
		return
	}
	assignment, err := h.Coursework.AssignMarks(c.Request.Context(), h.currentTeacher(c).ID, assignmentID, studentID, *req.Marks)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, assignment, "Marks assigned successfully")
}

func (h *Handler) CreateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	classID, err := parseID(req.ClassID, "class")
	if err != nil {
		fail(c, err)
		return
	}
	quiz, err := h.Coursework.CreateQuiz(c.Request.Context(), h.currentTeacher(c).ID, services.QuizInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ClassID:     classID,
		LastDate:    req.LastDate,
		Questions:   req.Questions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, quiz, "Quiz created successfully")
}

func (h *Handler) GetCreatedQuizzes(c *gin.Context) {
	quizzes, err := h.Coursework.QuizzesCreatedBy(c.Request.Context(), h.currentTeacher(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, quizzes, "Quizzes fetched successfully")
}

func (h *Handler) DeleteQuiz(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}
	if err := h.Coursework.DeleteQuiz(c.Request.Context(), h.currentTeacher(c).ID, quizID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Quiz deleted successfully")
}

func (h *Handler) GetStudentsByClass(c *gin.Context) {
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	roster, err := h.Classes.Roster(c.Request.Context(), h.currentTeacher(c).ID, classID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, roster, "Students fetched successfully")
}

func (h *Handler) GetStudentPerformance(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	performance, err := h.Coursework.StudentPerformance(c.Request.Context(), h.currentTeacher(c).ID, classID, studentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, performance, "Student performance fetched successfully")
}
