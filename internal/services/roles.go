package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/utils"
)

type (
	AdminAccounts   = AccountService[models.Admin, *models.Admin]
	TeacherAccounts = AccountService[models.Teacher, *models.Teacher]
	StudentAccounts = AccountService[models.Student, *models.Student]
)

// DeleteAdmin removes another admin. Admins cannot remove themselves.
func DeleteAdmin(ctx context.Context, admins *AdminAccounts, actingID, id primitive.ObjectID) error {
	if actingID == id {
		return utils.BadRequest("You cannot delete your own account")
	}
	return admins.Delete(ctx, id)
}

// DeleteTeacher removes a teacher that instructs no class.
func DeleteTeacher(ctx context.Context, teachers *TeacherAccounts, id primitive.ObjectID) error {
	teacher, err := teachers.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(teacher.InstructorOfClass) > 0 {
		return utils.Conflict("Teacher will not be deleted because they instruct a class")
	}
	return teachers.Delete(ctx, id)
}

// DeleteStudent removes a student that is not enrolled in a class.
func DeleteStudent(ctx context.Context, students *StudentAccounts, id primitive.ObjectID) error {
	student, err := students.Get(ctx, id)
	if err != nil {
		return err
	}
	if student.EnrolledInClass != nil {
		return utils.Conflict("Student will not be deleted because they are enrolled in a class")
	}
	return students.Delete(ctx, id)
}
