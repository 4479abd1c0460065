package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/models"
)

// RegisterRoutes mounts the three role APIs under /api.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	h.registerAdminRoutes(api.Group("/admin"))
	h.registerTeacherRoutes(api.Group("/teacher"))
	h.registerStudentRoutes(api.Group("/student"))
}

func (h *Handler) registerAdminRoutes(rg *gin.RouterGroup) {
	accounts := h.adminAccounts()
	auth := middleware.RequireAccount[models.Admin](h.Admins, middleware.AdminKey)

	rg.POST("/login", accounts.Login)
	rg.POST("/refreshAdminAccessToken", accounts.Refresh)

	secured := rg.Group("", auth)
	{
		secured.POST("/register", h.RegisterAdmin)
		secured.POST("/logout", accounts.Logout)
		secured.GET("/getCurrentAdmin", accounts.Current)
		secured.PUT("/updateAdminProfilePicture", accounts.UpdateProfilePicture)
		secured.PUT("/updateAdminProfileDetails", h.UpdateAdminProfileDetails)

		secured.POST("/addCity", h.AddCity)
		secured.GET("/getCities", h.GetCities)
		secured.POST("/addCampus", h.AddCampus)
		secured.GET("/getCampuses", h.GetCampuses)

		secured.POST("/addCourse", h.AddCourse)
		secured.GET("/getCourses", h.GetCourses)
		secured.GET("/getAllCourses", h.GetAllCourses)
		secured.PUT("/editCourse/:courseId", h.EditCourse)
		secured.DELETE("/deleteCourse/:courseId", h.DeleteCourse)
		secured.DELETE("/deleteCourseCity/:cityId/:courseId", h.DeleteCourseCity)
		secured.DELETE("/deleteCourseCampus/:campusId/:courseId", h.DeleteCourseCampus)

		secured.POST("/addClass", h.AddClass)
		secured.PUT("/editClass/:classId", h.EditClass)
		secured.DELETE("/deleteClass/:classId", h.DeleteClass)
		secured.GET("/getAllClasses", h.GetAllClasses)
		secured.GET("/getTeachersByCourse", h.GetTeachersByCourse)

		secured.GET("/getAllAdmins", h.GetAllAdmins)
		secured.PUT("/editAdminCityOrCampusOrVerification/:adminId", h.EditAdmin)
		secured.DELETE("/deleteAdmin/:adminId", h.DeleteAdmin)

		secured.GET("/getAllTeachers", h.GetAllTeachers)
		secured.PUT("/editTeacherVerification/:teacherId", h.EditTeacherVerification)
		secured.DELETE("/deleteTeacher/:teacherId", h.DeleteTeacher)

		secured.GET("/getAllStudents", h.GetAllStudents)
		secured.PUT("/editStudent/:studentId", h.EditStudent)
		secured.DELETE("/deleteStudent/:studentId", h.DeleteStudent)
	}
}

func (h *Handler) registerTeacherRoutes(rg *gin.RouterGroup) {
	accounts := h.teacherAccounts()
	auth := middleware.RequireAccount[models.Teacher](h.Teachers, middleware.TeacherKey)

	rg.POST("/register", h.RegisterTeacher)
	rg.POST("/login", accounts.Login)
	rg.POST("/refreshTeacherAccessToken", accounts.Refresh)

	secured := rg.Group("", auth)
	{
		secured.POST("/logout", accounts.Logout)
		secured.GET("/getCurrentTeacher", accounts.Current)
		secured.GET("/getClasses", h.GetTeacherClasses)
		secured.PUT("/updateTeacherProfilePicture", accounts.UpdateProfilePicture)
		secured.PUT("/updateTeacherProfileDetails", h.UpdateTeacherProfileDetails)

		secured.POST("/createAssignment", h.CreateAssignment)
		secured.GET("/getCreatedAssignments", h.GetCreatedAssignments)
		secured.PUT("/editAssignment/:assignmentId", h.EditAssignment)
		secured.DELETE("/deleteAssignment/:assignmentId", h.DeleteAssignment)
		secured.GET("/getStudentsSubmittedAssignment/:assignmentId", h.GetStudentsSubmittedAssignment)
		secured.GET("/getStudentsNotSubmittedAssignment/:assignmentId", h.GetStudentsNotSubmittedAssignment)
		secured.PUT("/assignMarks/:assignmentId", h.AssignMarks)

		secured.POST("/createQuiz", h.CreateQuiz)
		secured.GET("/getCreatedQuizzes", h.GetCreatedQuizzes)
		secured.DELETE("/deleteQuiz/:quizId", h.DeleteQuiz)

		secured.GET("/getStudentsByClass/:classId", h.GetStudentsByClass)
		secured.GET("/getStudentPerformance/:studentId/:classId", h.GetStudentPerformance)
	}
}

func (h *Handler) registerStudentRoutes(rg *gin.RouterGroup) {
	accounts := h.studentAccounts()
	auth := middleware.RequireAccount[models.Student](h.Students, middleware.StudentKey)

	rg.POST("/register", h.RegisterStudent)
	rg.POST("/login", accounts.Login)
	rg.POST("/refreshStudentAccessToken", accounts.Refresh)

	secured := rg.Group("", auth)
	{
		secured.POST("/logout", accounts.Logout)
		secured.GET("/getCurrentStudent", accounts.Current)
		secured.PUT("/updateStudentProfilePicture", accounts.UpdateProfilePicture)
		secured.PUT("/updateStudentProfileDetails", h.UpdateStudentProfileDetails)

		secured.POST("/enrollInClass", h.EnrollInClass)
		secured.GET("/getClass", h.GetStudentClass)
		secured.POST("/submitAssignment/:assignmentId", h.SubmitAssignment)
	}
}
