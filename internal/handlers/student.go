package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/services"
)

type registerStudentRequest struct {
	FullName          string `form:"fullName" binding:"required,notblank"`
	FatherName        string `form:"fatherName" binding:"required,notblank"`
	Username          string `form:"username" binding:"required,notblank"`
	Email             string `form:"email" binding:"required,email"`
	Password          string `form:"password" binding:"required,min=6"`
	PhoneNumber       string `form:"phoneNumber" binding:"required,notblank"`
	CNIC              string `form:"CNIC" binding:"required,notblank"`
	Gender            string `form:"gender" binding:"required,notblank"`
	Address           string `form:"address" binding:"required,notblank"`
	LastQualification string `form:"lastQualification" binding:"required,notblank"`
	DOB               string `form:"dob" binding:"required,notblank"`
	City              string `form:"city" binding:"required,notblank"`
	Campus            string `form:"campus" binding:"required,notblank"`
	Course            string `form:"course" binding:"required,notblank"`
}

type studentDetailsRequest struct {
	profileDetailsRequest
	FatherName        string `json:"fatherName" binding:"required,notblank"`
	LastQualification string `json:"lastQualification" binding:"required,notblank"`
	CNIC              string `json:"CNIC" binding:"required,notblank"`
	Address           string `json:"address" binding:"required,notblank"`
	DOB               string `json:"dob" binding:"required,notblank"`
}

type enrollRequest struct {
	EnrollmentKey string `json:"enrollmentKey" binding:"required,notblank"`
}

type submitAssignmentRequest struct {
	Link string `json:"link" binding:"required,url"`
}

func cnicCheck(cnic string) services.UniqueCheck {
	return services.UniqueCheck{Field: "CNIC", Value: cnic, Label: "CNIC"}
}

func (h *Handler) studentAccounts() accountRoutes[models.Student, *models.Student] {
	return accountRoutes[models.Student, *models.Student]{
		h:        h,
		accounts: h.Students,
		key:      middleware.StudentKey,
		label:    "Student",
		view: func(ctx context.Context, student *models.Student) (any, error) {
			return h.Populator.Student(ctx, student)
		},
	}
}

func (h *Handler) currentStudent(c *gin.Context) *models.Student {
	return middleware.Current[models.Student](c, middleware.StudentKey)
}

// RegisterStudent is public and logs the new student in.
func (h *Handler) RegisterStudent(c *gin.Context) {
	var req registerStudentRequest
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

	student := &models.Student{
		User: models.User{
			FullName:    strings.TrimSpace(req.FullName),
			Username:    strings.ToLower(strings.TrimSpace(req.Username)),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Gender:      strings.TrimSpace(req.Gender),
		},
		FatherName:        strings.TrimSpace(req.FatherName),
		CNIC:              strings.TrimSpace(req.CNIC),
		Address:           strings.TrimSpace(req.Address),
		DOB:               strings.TrimSpace(req.DOB),
		LastQualification: strings.TrimSpace(req.LastQualification),
		City:              cityID,
		Campus:            campusID,
		Course:            courseID,
	}
	if err := h.Students.Register(ctx, student, req.Password, upload, cnicCheck(student.CNIC)); err != nil {
		fail(c, err)
		return
	}

	pair, err := h.Students.IssueTokens(ctx, student)
	if err != nil {
		fail(c, err)
		return
	}
	h.studentAccounts().respondWithTokens(c, http.StatusCreated, student, pair, "Student registered successfully")
}

func (h *Handler) UpdateStudentProfileDetails(c *gin.Context) {
	var req studentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	cnic := strings.TrimSpace(req.CNIC)
	h.studentAccounts().updateDetails(c, req.details(), func(student *models.Student) {
		student.FatherName = strings.TrimSpace(req.FatherName)
		student.LastQualification = strings.TrimSpace(req.LastQualification)
		student.CNIC = cnic
		student.Address = strings.TrimSpace(req.Address)
		student.DOB = strings.TrimSpace(req.DOB)
	}, cnicCheck(cnic))
}

func (h *Handler) EnrollInClass(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	ctx := c.Request.Context()
	student := h.currentStudent(c)
	if _, err := h.Classes.Enroll(ctx, student.ID, strings.TrimSpace(req.EnrollmentKey)); err != nil {
		fail(c, err)
		return
	}
	view, err := h.Classes.StudentClass(ctx, student.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Enrolled in class successfully")
}

func (h *Handler) GetStudentClass(c *gin.Context) {
	view, err := h.Classes.StudentClass(c.Request.Context(), h.currentStudent(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Class fetched successfully")
}

func (h *Handler) SubmitAssignment(c *gin.Context) {
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	var req submitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	studentID := h.currentStudent(c).ID
	assignment, err := h.Coursework.Submit(c.Request.Context(), studentID, assignmentID, strings.TrimSpace(req.Link))
	if err != nil {
		fail(c, err)
		return
	}
	submission, _ := assignment.Submission(studentID)
	respond(c, http.StatusOK, submission, "Assignment submitted successfully")
}
