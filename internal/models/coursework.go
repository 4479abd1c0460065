package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Assignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ClassName   primitive.ObjectID `bson:"className" json:"className"`
	LastDate    time.Time          `bson:"lastDate" json:"lastDate"`
	TotalMarks  int                `bson:"totalMarks" json:"totalMarks"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	SubmittedBy []Submission       `bson:"submittedBy" json:"submittedBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Submission is keyed by StudentID; an assignment holds at most one per student.
type Submission struct {
	StudentID      primitive.ObjectID `bson:"studentId" json:"studentId"`
	Link           string             `bson:"link" json:"link"`
	Marks          *int               `bson:"marks" json:"marks"`
	SubmissionDate time.Time          `bson:"submissionDate" json:"submissionDate"`
}

// Submission returns the submission of the given student, if any.
func (a *Assignment) Submission(studentID primitive.ObjectID) (*Submission, bool) {
	for i := range a.SubmittedBy {
		if a.SubmittedBy[i].StudentID == studentID {
			return &a.SubmittedBy[i], true
		}
	}
	return nil, false
}

type Quiz struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ClassName   primitive.ObjectID `bson:"className" json:"className"`
	Questions   []QuizQuestion     `bson:"questions" json:"questions"`
	LastDate    time.Time          `bson:"lastDate" json:"lastDate"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type QuizQuestion struct {
	Question string   `bson:"question" json:"question" binding:"required,notblank"`
	Options  []string `bson:"options" json:"options" binding:"required,min=2"`
	Answer   string   `bson:"answer" json:"answer,omitempty" binding:"required,notblank"`
}

// WithoutAnswers returns a copy of the quiz that is safe to show to students.
func (q Quiz) WithoutAnswers() Quiz {
	questions := make([]QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Answer = ""
		questions[i] = question
	}
	q.Questions = questions
	return q
}
