package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/store"
	"github.com/harentsoaR/campus-api/internal/utils"
)

// CourseworkService manages assignments, submissions and quizzes. Teachers
// only touch coursework of classes they instruct.
type CourseworkService struct {
	store   *store.Store
	classes *ClassService
	now     func() time.Time
}

func NewCourseworkService(st *store.Store, classes *ClassService) *CourseworkService {
	return &CourseworkService{store: st, classes: classes, now: time.Now}
}

type AssignmentInput struct {
	Title       string
	Description string
	ClassID     primitive.ObjectID
	LastDate    time.Time
	TotalMarks  int
}

type AssignmentPatch struct {
	Title       *string
	Description *string
	LastDate    *time.Time
	TotalMarks  *int
}

type QuizInput struct {
	Title       string
	Description string
	ClassID     primitive.ObjectID
	LastDate    time.Time
	Questions   []models.QuizQuestion
}

func (s *CourseworkService) CreateAssignment(ctx context.Context, teacherID primitive.ObjectID, in AssignmentInput) (*models.Assignment, error) {
	if in.TotalMarks <= 0 {
		return nil, utils.BadRequest("Total marks must be greater than zero")
	}
	class, err := s.classes.Instructed(ctx, teacherID, in.ClassID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	assignment := &models.Assignment{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		ClassName:   class.ID,
		LastDate:    in.LastDate.UTC(),
		TotalMarks:  in.TotalMarks,
		CreatedBy:   teacherID,
		SubmittedBy: []models.Submission{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Assignments.Insert(ctx, assignment); err != nil {
		return nil, err
	}

	class.Assignments = append(class.Assignments, assignment.ID)
	class.UpdatedAt = now
	if err := s.store.Classes.Replace(ctx, class.ID, class); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *CourseworkService) AssignmentsCreatedBy(ctx context.Context, teacherID primitive.ObjectID) ([]models.Assignment, error) {
	return s.store.Assignments.Find(ctx, bson.M{"createdBy": teacherID})
}

// checkInstructor allows the current instructor of classID. Coursework
// whose class is gone stays with the teacher who created it.
func (s *CourseworkService) checkInstructor(ctx context.Context, teacherID, classID, createdBy primitive.ObjectID, orphan string) error {
	class, err := s.store.Classes.FindByID(ctx, classID)
	if errors.Is(err, store.ErrNotFound) {
		if createdBy != teacherID {
			return utils.Forbidden(orphan)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if class.Teacher != teacherID {
		return utils.Forbidden("You are not the instructor of this class")
	}
	return nil
}

func (s *CourseworkService) instructedAssignment(ctx context.Context, teacherID, id primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.store.Assignments.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Assignment not found")
	}
	if err != nil {
		return nil, err
	}
	err = s.checkInstructor(ctx, teacherID, assignment.ClassName, assignment.CreatedBy, "You did not create this assignment")
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *CourseworkService) EditAssignment(ctx context.Context, teacherID, id primitive.ObjectID, patch AssignmentPatch) (*models.Assignment, error) {
	assignment, err := s.instructedAssignment(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		assignment.Title = *patch.Title
	}
	if patch.Description != nil {
		assignment.Description = *patch.Description
	}
	if patch.LastDate != nil {
		assignment.LastDate = patch.LastDate.UTC()
	}
	if patch.TotalMarks != nil {
		if *patch.TotalMarks <= 0 {
			return nil, utils.BadRequest("Total marks must be greater than zero")
		}
		for _, submission := range assignment.SubmittedBy {
			if submission.Marks != nil && *submission.Marks > *patch.TotalMarks {
				return nil, utils.BadRequest("Total marks are lower than marks already given")
			}
		}
		assignment.TotalMarks = *patch.TotalMarks
	}
	assignment.UpdatedAt = s.now().UTC()
	if err := s.store.Assignments.Replace(ctx, assignment.ID, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *CourseworkService) DeleteAssignment(ctx context.Context, teacherID, id primitive.ObjectID) error {
	assignment, err := s.instructedAssignment(ctx, teacherID, id)
	if err != nil {
		return err
	}
	if err := s.store.Assignments.Delete(ctx, id); err != nil {
		return err
	}

	class, err := s.store.Classes.FindByID(ctx, assignment.ClassName)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	class.Assignments = without(class.Assignments, id)
	class.UpdatedAt = s.now().UTC()
	return s.store.Classes.Replace(ctx, class.ID, class)
}

// Submitted lists the submissions of an assignment with their students.
func (s *CourseworkService) Submitted(ctx context.Context, teacherID, id primitive.ObjectID) ([]models.SubmissionView, error) {
	assignment, err := s.instructedAssignment(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	views := make([]models.SubmissionView, 0, len(assignment.SubmittedBy))
	if len(assignment.SubmittedBy) == 0 {
		return views, nil
	}

	ids := make([]primitive.ObjectID, 0, len(assignment.SubmittedBy))
	for _, submission := range assignment.SubmittedBy {
		ids = append(ids, submission.StudentID)
	}
	students, err := s.store.Students.Find(ctx, store.IDsFilter(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Student, len(students))
	for i := range students {
		byID[students[i].ID] = &students[i]
	}

	for _, submission := range assignment.SubmittedBy {
		student, ok := byID[submission.StudentID]
		if !ok {
			continue
		}
		views = append(views, models.SubmissionView{
			Student:        models.NewStudentRef(student),
			Link:           submission.Link,
			Marks:          submission.Marks,
			SubmissionDate: submission.SubmissionDate,
		})
	}
	return views, nil
}

// NotSubmitted lists the students of the assignment's class that have not
// submitted it.
func (s *CourseworkService) NotSubmitted(ctx context.Context, teacherID, id primitive.ObjectID) ([]models.StudentRef, error) {
	assignment, err := s.instructedAssignment(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.Get(ctx, assignment.ClassName)
	if err != nil {
		return nil, err
	}

	pending := make([]primitive.ObjectID, 0, len(class.Students))
	for _, studentID := range class.Students {
		if _, ok := assignment.Submission(studentID); !ok {
			pending = append(pending, studentID)
		}
	}
	refs := make([]models.StudentRef, 0, len(pending))
	if len(pending) == 0 {
		return refs, nil
	}
	students, err := s.store.Students.Find(ctx, store.IDsFilter(pending))
	if err != nil {
		return nil, err
	}
	for i := range students {
		refs = append(refs, models.NewStudentRef(&students[i]))
	}
	return refs, nil
}

func (s *CourseworkService) AssignMarks(ctx context.Context, teacherID, id, studentID primitive.ObjectID, marks int) (*models.Assignment, error) {
	assignment, err := s.instructedAssignment(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if marks < 0 || marks > assignment.TotalMarks {
		return nil, utils.BadRequest("Marks must be between 0 and the total marks of the assignment")
	}
	submission, ok := assignment.Submission(studentID)
	if !ok {
		return nil, utils.NotFound("Student has not submitted this assignment")
	}
	submission.Marks = &marks
	assignment.UpdatedAt = s.now().UTC()
	if err := s.store.Assignments.Replace(ctx, assignment.ID, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Submit records a student's link for an assignment of the student's class.
// Each student submits once and only before the deadline.
func (s *CourseworkService) Submit(ctx context.Context, studentID, id primitive.ObjectID, link string) (*models.Assignment, error) {
	student, err := s.store.Students.FindByID(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	assignment, err := s.store.Assignments.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("Assignment not found")
	}
	if err != nil {
		return nil, err
	}

	if student.EnrolledInClass == nil || *student.EnrolledInClass != assignment.ClassName {
		return nil, utils.Forbidden("You are not enrolled in the class of this assignment")
	}
	if _, ok := assignment.Submission(studentID); ok {
		return nil, utils.Conflict("Assignment already submitted")
	}
	now := s.now().UTC()
	if now.After(assignment.LastDate) {
		return nil, utils.BadRequest("Submission deadline has passed")
	}

	assignment.SubmittedBy = append(assignment.SubmittedBy, models.Submission{
		StudentID:      studentID,
		Link:           link,
		SubmissionDate: now,
	})
	assignment.UpdatedAt = now
	if err := s.store.Assignments.Replace(ctx, assignment.ID, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// StudentPerformance summarises a student's submissions in a class the
// teacher instructs.
func (s *CourseworkService) StudentPerformance(ctx context.Context, teacherID, classID, studentID primitive.ObjectID) (*models.StudentPerformance, error) {
	class, err := s.classes.Instructed(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(class.Students, studentID) {
		return nil, utils.NotFound("Student is not enrolled in this class")
	}
	student, err := s.store.Students.FindByID(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	assignments, err := s.store.Assignments.Find(ctx, bson.M{"className": class.ID})
	if err != nil {
		return nil, err
	}
	performance := &models.StudentPerformance{
		TotalAssignments:     len(assignments),
		StudentInfo:          models.NewStudentRef(student),
		SubmittedAssignments: []models.SubmittedAssignment{},
	}
	for i := range assignments {
		submission, ok := assignments[i].Submission(studentID)
		if !ok {
			continue
		}
		performance.SubmittedAssignments = append(performance.SubmittedAssignments, models.SubmittedAssignment{
			Title:          assignments[i].Title,
			Description:    assignments[i].Description,
			Marks:          submission.Marks,
			Link:           submission.Link,
			SubmissionDate: submission.SubmissionDate,
		})
	}
	performance.SubmittedAssignmentsCount = len(performance.SubmittedAssignments)
	return performance, nil
}

func (s *CourseworkService) CreateQuiz(ctx context.Context, teacherID primitive.ObjectID, in QuizInput) (*models.Quiz, error) {
	if len(in.Questions) == 0 {
		return nil, utils.BadRequest("A quiz needs at least one question")
	}
	for _, question := range in.Questions {
		if !slices.Contains(question.Options, question.Answer) {
			return nil, utils.BadRequest("Answer must be one of the options")
		}
	}
	class, err := s.classes.Instructed(ctx, teacherID, in.ClassID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	quiz := &models.Quiz{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		ClassName:   class.ID,
		Questions:   in.Questions,
		LastDate:    in.LastDate.UTC(),
		CreatedBy:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Quizzes.Insert(ctx, quiz); err != nil {
		return nil, err
	}

	class.Quizzes = append(class.Quizzes, quiz.ID)
	class.UpdatedAt = now
	if err := s.store.Classes.Replace(ctx, class.ID, class); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *CourseworkService) QuizzesCreatedBy(ctx context.Context, teacherID primitive.ObjectID) ([]models.Quiz, error) {
	return s.store.Quizzes.Find(ctx, bson.M{"createdBy": teacherID})
}

func (s *CourseworkService) DeleteQuiz(ctx context.Context, teacherID, id primitive.ObjectID) error {
	quiz, err := s.store.Quizzes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound("Quiz not found")
	}
	if err != nil {
		return err
	}
	if err := s.checkInstructor(ctx, teacherID, quiz.ClassName, quiz.CreatedBy, "You did not create this quiz"); err != nil {
		return err
	}
	if err := s.store.Quizzes.Delete(ctx, id); err != nil {
		return err
	}

	class, err := s.store.Classes.FindByID(ctx, quiz.ClassName)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	class.Quizzes = without(class.Quizzes, id)
	class.UpdatedAt = s.now().UTC()
	return s.store.Classes.Replace(ctx, class.ID, class)
}
