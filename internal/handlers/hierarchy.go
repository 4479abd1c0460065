package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
)

type addCityRequest struct {
	CityName string `json:"cityName" binding:"required,notblank"`
}

type addCampusRequest struct {
	Name   string `json:"name" binding:"required,notblank"`
	CityID string `json:"cityId" binding:"required,notblank"`
}

type addCourseRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	CityID   string `json:"cityId" binding:"required,notblank"`
	CampusID string `json:"campusId" binding:"required,notblank"`
}

type editCourseRequest struct {
	CourseName string `json:"courseName" binding:"required,notblank"`
}

func (h *Handler) AddCity(c *gin.Context) {
	var req addCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	city, err := h.Hierarchy.AddCity(c.Request.Context(), h.currentAdmin(c).ID, strings.TrimSpace(req.CityName))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, city, "City added successfully")
}

func (h *Handler) GetCities(c *gin.Context) {
	cities, err := h.Hierarchy.ListCities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, cities, "Cities fetched successfully")
}

func (h *Handler) AddCampus(c *gin.Context) {
	var req addCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	cityID, err := parseID(req.CityID, "city")
	if err != nil {
		fail(c, err)
		return
	}
	campus, err := h.Hierarchy.AddCampus(c.Request.Context(), h.currentAdmin(c).ID, strings.TrimSpace(req.Name), cityID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, campus, "Campus added successfully")
}

// GetCampuses lists every campus, or only those of ?cityId=.
func (h *Handler) GetCampuses(c *gin.Context) {
	var cityID *primitive.ObjectID
	if raw := c.Query("cityId"); raw != "" {
		id, err := parseID(raw, "city")
		if err != nil {
			fail(c, err)
			return
		}
		cityID = &id
	}
	campuses, err := h.Hierarchy.ListCampuses(c.Request.Context(), cityID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, campuses, "Campuses fetched successfully")
}

func (h *Handler) AddCourse(c *gin.Context) {
	var req addCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	cityID, err := parseID(req.CityID, "city")
	if err != nil {
		fail(c, err)
		return
	}
	campusID, err := parseID(req.CampusID, "campus")
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.Hierarchy.AddCourse(c.Request.Context(), h.currentAdmin(c).ID, strings.TrimSpace(req.Name), cityID, campusID)
	if err != nil {
		fail(c, err)
		return
	}
	switch {
	case result.Created:
		h.respondCourse(c, http.StatusCreated, result.Course, "Course added successfully")
	case result.Changed:
		h.respondCourse(c, http.StatusCreated, result.Course, "Course extended to the campus successfully")
	default:
		h.respondCourse(c, http.StatusOK, result.Course, "Course is already offered at this campus")
	}
}

// respondCourse answers with the course after joining its cities, campuses
// and creator.
func (h *Handler) respondCourse(c *gin.Context, status int, course *models.Course, message string) {
	view, err := h.Populator.Course(c.Request.Context(), course)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, status, view, message)
}

// GetCourses returns the raw course documents.
func (h *Handler) GetCourses(c *gin.Context) {
	courses, err := h.Hierarchy.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, courses, "Courses fetched successfully")
}

// GetAllCourses returns the courses with cities, campuses and creator
// populated.
func (h *Handler) GetAllCourses(c *gin.Context) {
	ctx := c.Request.Context()
	courses, err := h.Hierarchy.ListCourses(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	views, err := h.Populator.Courses(ctx, courses)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, views, "Courses fetched successfully")
}

func (h *Handler) EditCourse(c *gin.Context) {
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	var req editCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	course, err := h.Hierarchy.RenameCourse(c.Request.Context(), courseID, strings.TrimSpace(req.CourseName))
	if err != nil {
		fail(c, err)
		return
	}
	h.respondCourse(c, http.StatusOK, course, "Course updated successfully")
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	if err := h.Hierarchy.DeleteCourse(c.Request.Context(), courseID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Course deleted successfully")
}

func (h *Handler) DeleteCourseCity(c *gin.Context) {
	cityID, ok := pathID(c, "cityId")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	course, err := h.Hierarchy.RemoveCourseCity(c.Request.Context(), courseID, cityID)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondCourse(c, http.StatusOK, course, "City removed from course successfully")
}

func (h *Handler) DeleteCourseCampus(c *gin.Context) {
	campusID, ok := pathID(c, "campusId")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	course, err := h.Hierarchy.RemoveCourseCampus(c.Request.Context(), courseID, campusID)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondCourse(c, http.StatusOK, course, "Campus removed from course successfully")
}
