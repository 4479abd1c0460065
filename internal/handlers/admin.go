package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/services"
	"github.com/harentsoaR/campus-api/internal/utils"
)

type registerAdminRequest struct {
	FullName    string `form:"fullName" binding:"required,notblank"`
	Username    string `form:"username" binding:"required,notblank"`
	Email       string `form:"email" binding:"required,email"`
	Password    string `form:"password" binding:"required,min=6"`
	PhoneNumber string `form:"phoneNumber" binding:"required,notblank"`
	Gender      string `form:"gender" binding:"required,notblank"`
	City        string `form:"city" binding:"required,notblank"`
	Campus      string `form:"campus" binding:"required,notblank"`
}

type editAdminRequest struct {
	CityID     *string `json:"cityId"`
	CampusID   *string `json:"campusId"`
	IsVerified *bool   `json:"isVerified"`
}

type verificationRequest struct {
	IsVerified *bool `json:"isVerified" binding:"required"`
}

func (h *Handler) adminAccounts() accountRoutes[models.Admin, *models.Admin] {
	return accountRoutes[models.Admin, *models.Admin]{
		h:        h,
		accounts: h.Admins,
		key:      middleware.AdminKey,
		label:    "Admin",
		view: func(ctx context.Context, admin *models.Admin) (any, error) {
			return h.Populator.Admin(ctx, admin)
		},
	}
}

func (h *Handler) currentAdmin(c *gin.Context) *models.Admin {
	return middleware.Current[models.Admin](c, middleware.AdminKey)
}

// placeInCampus checks that the campus exists and lies in the city.
func (h *Handler) placeInCampus(ctx context.Context, cityID, campusID primitive.ObjectID) error {
	if _, err := h.Hierarchy.GetCity(ctx, cityID); err != nil {
		return err
	}
	campus, err := h.Hierarchy.GetCampus(ctx, campusID)
	if err != nil {
		return err
	}
	if campus.City != cityID {
		return utils.BadRequest("Campus does not belong to the selected city")
	}
	return nil
}

// RegisterAdmin is only reachable by an authenticated admin.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
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
	ctx := c.Request.Context()
	if err := h.placeInCampus(ctx, cityID, campusID); err != nil {
		fail(c, err)
		return
	}

	upload, closeUpload, err := profileUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeUpload()

	creator := h.currentAdmin(c).ID
	admin := &models.Admin{
		User: models.User{
			FullName:    strings.TrimSpace(req.FullName),
			Username:    strings.ToLower(strings.TrimSpace(req.Username)),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Gender:      strings.TrimSpace(req.Gender),
			CreatedBy:   &creator,
		},
		City:   cityID,
		Campus: campusID,
	}
	if err := h.Admins.Register(ctx, admin, req.Password, upload); err != nil {
		fail(c, err)
		return
	}

	view, err := h.Populator.Admin(ctx, admin)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, view, "Admin registered successfully")
}

func (h *Handler) UpdateAdminProfileDetails(c *gin.Context) {
	var req profileDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	h.adminAccounts().updateDetails(c, req.details(), nil)
}

func (h *Handler) GetAllAdmins(c *gin.Context) {
	ctx := c.Request.Context()
	admins, err := h.Admins.List(ctx, nil)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.Populator.Admins(ctx, admins)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, views, "Admins fetched successfully")
}

// EditAdmin moves an admin to another city and/or campus and, when the
// acting admin is verified, changes its verification.
func (h *Handler) EditAdmin(c *gin.Context) {
	adminID, ok := pathID(c, "adminId")
	if !ok {
		return
	}
	var req editAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	cityID, err := parseOptionalID(req.CityID, "city")
	if err != nil {
		fail(c, err)
		return
	}
	campusID, err := parseOptionalID(req.CampusID, "campus")
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	acting := h.currentAdmin(c)
	admin, err := h.Admins.Get(ctx, adminID)
	if err != nil {
		fail(c, err)
		return
	}

	if cityID != nil {
		admin.City = *cityID
	}
	if campusID != nil {
		admin.Campus = *campusID
	}
	if cityID != nil || campusID != nil {
		if err := h.placeInCampus(ctx, admin.City, admin.Campus); err != nil {
			fail(c, err)
			return
		}
	}
	if req.IsVerified != nil {
		if !acting.IsVerified {
			fail(c, utils.Forbidden("Only a verified admin can change verification"))
			return
		}
		admin.IsVerified = *req.IsVerified
	}
	admin.UpdatedBy = &acting.ID

	if err := h.Admins.Save(ctx, admin); err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Admin(ctx, admin)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Admin updated successfully")
}

func (h *Handler) DeleteAdmin(c *gin.Context) {
	adminID, ok := pathID(c, "adminId")
	if !ok {
		return
	}
	if err := services.DeleteAdmin(c.Request.Context(), h.Admins, h.currentAdmin(c).ID, adminID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Admin deleted successfully")
}

func (h *Handler) GetAllTeachers(c *gin.Context) {
	ctx := c.Request.Context()
	teachers, err := h.Teachers.List(ctx, nil)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.Populator.Teachers(ctx, teachers)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, views, "Teachers fetched successfully")
}

func (h *Handler) EditTeacherVerification(c *gin.Context) {
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		return
	}
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	ctx := c.Request.Context()
	teacher, err := h.Teachers.SetVerified(ctx, teacherID, *req.IsVerified, h.currentAdmin(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Teacher(ctx, teacher)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Teacher updated successfully")
}

func (h *Handler) DeleteTeacher(c *gin.Context) {
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		return
	}
	if err := services.DeleteTeacher(c.Request.Context(), h.Teachers, teacherID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Teacher deleted successfully")
}

func (h *Handler) GetAllStudents(c *gin.Context) {
	ctx := c.Request.Context()
	students, err := h.Students.List(ctx, nil)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.Populator.Students(ctx, students)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, views, "Students fetched successfully")
}

func (h *Handler) EditStudent(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	ctx := c.Request.Context()
	student, err := h.Students.SetVerified(ctx, studentID, *req.IsVerified, h.currentAdmin(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Student(ctx, student)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Student updated successfully")
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if err := services.DeleteStudent(c.Request.Context(), h.Students, studentID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Student deleted successfully")
}
