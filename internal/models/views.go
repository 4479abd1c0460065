package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The *Ref types are the projections used when a reference is populated.

type CityRef struct {
	ID       primitive.ObjectID `json:"_id"`
	CityName string             `json:"cityName"`
}

type CampusRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

type CourseRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

type ClassRef struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	Batch   int                `json:"batch"`
	Teacher *TeacherRef        `json:"teacher,omitempty"`
}

// AdminRef is the createdBy/updatedBy projection.
type AdminRef struct {
	ID          primitive.ObjectID `json:"_id"`
	FullName    string             `json:"fullName"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phoneNumber"`
	Gender      string             `json:"gender"`
	City        *CityRef           `json:"city"`
	Campus      *CampusRef         `json:"campus"`
}

type TeacherRef struct {
	ID          primitive.ObjectID `json:"_id"`
	FullName    string             `json:"fullName"`
	Email       string             `json:"email,omitempty"`
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	Gender      string             `json:"gender,omitempty"`
	City        *CityRef           `json:"city,omitempty"`
}

type StudentRef struct {
	ID          primitive.ObjectID `json:"_id"`
	RollNo      string             `json:"rollNo"`
	FullName    string             `json:"fullName"`
	FatherName  string             `json:"fatherName"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phoneNumber"`
	CNIC        string             `json:"CNIC"`
	Address     string             `json:"address"`
}

func NewStudentRef(s *Student) StudentRef {
	return StudentRef{
		ID:          s.ID,
		RollNo:      s.RollNo,
		FullName:    s.FullName,
		FatherName:  s.FatherName,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		CNIC:        s.CNIC,
		Address:     s.Address,
	}
}

// Populated views. Each replaces id references with the projections above.

type AdminView struct {
	User
	City   *CityRef   `json:"city"`
	Campus *CampusRef `json:"campus"`
	// These take precedence over the raw ids on the embedded User.
	CreatedBy *AdminRef `json:"createdBy,omitempty"`
	UpdatedBy *AdminRef `json:"updatedBy,omitempty"`
}

type TeacherView struct {
	User
	City              *CityRef    `json:"city"`
	Campus            []CampusRef `json:"campus"`
	Course            *CourseRef  `json:"course"`
	InstructorOfClass []ClassRef  `json:"instructorOfClass"`
}

type StudentView struct {
	User
	FatherName        string     `json:"fatherName"`
	CNIC              string     `json:"CNIC"`
	Address           string     `json:"address"`
	DOB               string     `json:"dob"`
	LastQualification string     `json:"lastQualification"`
	RollNo            string     `json:"rollNo"`
	City              *CityRef   `json:"city"`
	Campus            *CampusRef `json:"campus"`
	Course            *CourseRef `json:"course"`
	EnrolledInClass   *ClassRef  `json:"enrolledInClass"`
}

type CourseView struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	City      []CityRef          `json:"city"`
	Campus    []CampusRef        `json:"campus"`
	CreatedBy *AdminRef          `json:"createdBy"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type ClassView struct {
	ID            primitive.ObjectID   `json:"_id"`
	Name          string               `json:"name"`
	EnrollmentKey string               `json:"enrollmentKey"`
	Batch         int                  `json:"batch"`
	Teacher       *TeacherRef          `json:"teacher"`
	City          *CityRef             `json:"city"`
	Campus        *CampusRef           `json:"campus"`
	Course        *CourseRef           `json:"course"`
	Students      []primitive.ObjectID `json:"students"`
	Assignments   []primitive.ObjectID `json:"assignments"`
	Quizzes       []primitive.ObjectID `json:"quizzes"`
	CreatedBy     *AdminRef            `json:"createdBy"`
	UpdatedBy     *AdminRef            `json:"updatedBy,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// StudentClassView is the class as seen by an enrolled student.
type StudentClassView struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	Batch       int                `json:"batch"`
	Teacher     *TeacherRef        `json:"teacher"`
	Course      *CourseRef         `json:"course"`
	Assignments []Assignment       `json:"assignments"`
	Quizzes     []Quiz             `json:"quizzes"`
}

// ClassRoster is a class with its students populated.
type ClassRoster struct {
	ID            primitive.ObjectID `json:"_id"`
	Name          string             `json:"name"`
	Batch         int                `json:"batch"`
	EnrollmentKey string             `json:"enrollmentKey"`
	Students      []StudentRef       `json:"students"`
}

type SubmissionView struct {
	Student        StudentRef `json:"student"`
	Link           string     `json:"link"`
	Marks          *int       `json:"marks"`
	SubmissionDate time.Time  `json:"submissionDate"`
}

type SubmittedAssignment struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Marks          *int      `json:"marks"`
	Link           string    `json:"link"`
	SubmissionDate time.Time `json:"submissionDate"`
}

type StudentPerformance struct {
	TotalAssignments          int                   `json:"totalAssignments"`
	SubmittedAssignmentsCount int                   `json:"submittedAssignmentsCount"`
	StudentInfo               StudentRef            `json:"studentInfo"`
	SubmittedAssignments      []SubmittedAssignment `json:"submittedAssignments"`
}
