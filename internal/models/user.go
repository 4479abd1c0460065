package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User holds the account fields every role shares. Each role document
// inlines it, so all three collections have the same credential shape.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	FullName     string              `bson:"fullName" json:"fullName"`
	Username     string              `bson:"username" json:"username"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password" json:"-"` // Hide from JSON responses
	Profile      string              `bson:"profile" json:"profile"`
	Role         string              `bson:"role" json:"role"`
	PhoneNumber  string              `bson:"phoneNumber" json:"phoneNumber"`
	Gender       string              `bson:"gender" json:"gender"`
	IsVerified   bool                `bson:"isVerified" json:"isVerified"`
	RefreshToken string              `bson:"refreshToken,omitempty" json:"-"`
	CreatedBy    *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy    *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Account gives generic code access to the shared fields of any role.
func (u *User) Account() *User { return u }

type Admin struct {
	User   `bson:",inline"`
	City   primitive.ObjectID `bson:"city,omitempty" json:"city"`
	Campus primitive.ObjectID `bson:"campus,omitempty" json:"campus"`
}

type Teacher struct {
	User              `bson:",inline"`
	City              primitive.ObjectID   `bson:"city,omitempty" json:"city"`
	Campus            []primitive.ObjectID `bson:"campus" json:"campus"`
	Course            primitive.ObjectID   `bson:"course,omitempty" json:"course"`
	InstructorOfClass []primitive.ObjectID `bson:"instructorOfClass" json:"instructorOfClass"`
}

type Student struct {
	User              `bson:",inline"`
	FatherName        string              `bson:"fatherName" json:"fatherName"`
	CNIC              string              `bson:"CNIC" json:"CNIC"`
	Address           string              `bson:"address" json:"address"`
	DOB               string              `bson:"dob" json:"dob"`
	LastQualification string              `bson:"lastQualification" json:"lastQualification"`
	RollNo            string              `bson:"rollNo" json:"rollNo"`
	City              primitive.ObjectID  `bson:"city,omitempty" json:"city"`
	Campus            primitive.ObjectID  `bson:"campus,omitempty" json:"campus"`
	Course            primitive.ObjectID  `bson:"course,omitempty" json:"course"`
	EnrolledInClass   *primitive.ObjectID `bson:"enrolledInClass" json:"enrolledInClass"`
}
