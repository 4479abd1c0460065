package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/campus-api/internal/services"
)

type addClassRequest struct {
	Name          string `json:"name" binding:"required,notblank"`
	EnrollmentKey string `json:"enrollmentKey" binding:"required,notblank"`
	Batch         int    `json:"batch" binding:"required,gte=1"`
	TeacherID     string `json:"teacherId" binding:"required,notblank"`
	CityID        string `json:"cityId" binding:"required,notblank"`
	CampusID      string `json:"campusId" binding:"required,notblank"`
	CourseID      string `json:"courseId" binding:"required,notblank"`
}

type editClassRequest struct {
	ClassName     *string `json:"className" binding:"omitempty,notblank"`
	EnrollmentKey *string `json:"enrollmentKey" binding:"omitempty,notblank"`
	Batch         *int    `json:"batch" binding:"omitempty,gte=1"`
	TeacherID     *string `json:"teacherId"`
	CityID        *string `json:"cityId"`
	CampusID      *string `json:"campusId"`
	CourseID      *string `json:"courseId"`
}

func (r addClassRequest) input() (services.ClassInput, error) {
	in := services.ClassInput{
		Name:          strings.TrimSpace(r.Name),
		EnrollmentKey: strings.TrimSpace(r.EnrollmentKey),
		Batch:         r.Batch,
	}
	var err error
	if in.TeacherID, err = parseID(r.TeacherID, "teacher"); err != nil {
		return in, err
	}
	if in.CityID, err = parseID(r.CityID, "city"); err != nil {
		return in, err
	}
	if in.CampusID, err = parseID(r.CampusID, "campus"); err != nil {
		return in, err
	}
	if in.CourseID, err = parseID(r.CourseID, "course"); err != nil {
		return in, err
	}
	return in, nil
}

func (r editClassRequest) patch() (services.ClassPatch, error) {
	patch := services.ClassPatch{
		Name:          r.ClassName,
		EnrollmentKey: r.EnrollmentKey,
		Batch:         r.Batch,
	}
	var err error
	if patch.TeacherID, err = parseOptionalID(r.TeacherID, "teacher"); err != nil {
		return patch, err
	}
	if patch.CityID, err = parseOptionalID(r.CityID, "city"); err != nil {
		return patch, err
	}
	if patch.CampusID, err = parseOptionalID(r.CampusID, "campus"); err != nil {
		return patch, err
	}
	if patch.CourseID, err = parseOptionalID(r.CourseID, "course"); err != nil {
		return patch, err
	}
	return patch, nil
}

func (h *Handler) AddClass(c *gin.Context) {
	var req addClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	class, err := h.Classes.Create(ctx, h.currentAdmin(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Class(ctx, class)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, view, "Class added successfully")
}

func (h *Handler) EditClass(c *gin.Context) {
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	var req editClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	class, err := h.Classes.Edit(ctx, h.currentAdmin(c).ID, classID, patch)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.Populator.Class(ctx, class)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view, "Class updated successfully")
}

func (h *Handler) DeleteClass(c *gin.Context) {
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	if err := h.Classes.Delete(c.Request.Context(), classID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Class deleted successfully")
}

func (h *Handler) GetAllClasses(c *gin.Context) {
	ctx := c.Request.Context()
	classes, err := h.Classes.List(ctx)
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

func (h *Handler) GetTeachersByCourse(c *gin.Context) {
	courseID, err := parseID(c.Query("courseId"), "course")
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	teachers, err := h.Classes.TeachersByCourse(ctx, courseID)
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
