package models

// Batch is a cohort of students sharing a passing year.
type Batch struct {
	Base
	Name           string `db:"name" json:"name" validate:"required"`
	PassingYear    int    `db:"passing_year" json:"passingYear" validate:"required,gte=1900,lte=2200"`
	SchoolOpenDate string `db:"school_open_date" json:"schoolOpenDate" validate:"required,apidate"`
}

// Class is a grade level, e.g. "Class 5".
type Class struct {
	Base
	Name        string `db:"name" json:"name" validate:"required"`
	Description string `db:"description" json:"description"`
}

// Division splits a class into parallel groups.
type Division struct {
	Base
	Name    string `db:"name" json:"name" validate:"required"`
	ClassID string `db:"class_id" json:"classId" validate:"required"`
}

// Section is a teaching group inside a class.
type Section struct {
	Base
	Name    string `db:"name" json:"name" validate:"required"`
	ClassID string `db:"class_id" json:"classId" validate:"required"`
}

// Subject is taught to a class.
type Subject struct {
	Base
	Name    string `db:"name" json:"name" validate:"required"`
	Code    string `db:"code" json:"code" validate:"required"`
	ClassID string `db:"class_id" json:"classId"`
}

// School is a registered institution.
type School struct {
	Base
	SchoolCode    string    `db:"school_code" json:"schoolCode" validate:"required"`
	Name          string    `db:"name" json:"name" validate:"required"`
	PrincipalName string    `db:"principal_name" json:"principalName" validate:"required"`
	Contact       string    `db:"contact" json:"contact" validate:"required"`
	Medium        string    `db:"medium" json:"medium"`
	Board         string    `db:"board" json:"board"`
	Address       Addresses `db:"address" json:"address"`
}

// Teacher is a staff member.
type Teacher struct {
	Base
	Name          string `db:"name" json:"name" validate:"required"`
	Email         string `db:"email" json:"email" validate:"omitempty,email"`
	Contact       string `db:"contact" json:"contact" validate:"required"`
	SubjectID     string `db:"subject_id" json:"subjectId"`
	DateOfJoining string `db:"date_of_joining" json:"dateOfJoining" validate:"omitempty,apidate"`
}

// Student is an enrolled learner.
type Student struct {
	Base
	Name                  string  `db:"name" json:"name" validate:"required"`
	RollNumber            string  `db:"roll_number" json:"rollNumber" validate:"required"`
	ClassID               string  `db:"class_id" json:"classId" validate:"required"`
	DivisionID            string  `db:"division_id" json:"divisionId"`
	DateOfBirth           string  `db:"date_of_birth" json:"dateOfBirth" validate:"required,apidate"`
	GuardianName          string  `db:"guardian_name" json:"guardianName"`
	Contact               string  `db:"contact" json:"contact"`
	CorrespondenceAddress Address `db:"correspondence_address" json:"correspondenceAddress"`
	PermanentAddress      Address `db:"permanent_address" json:"permanentAddress"`
	SameAsCorrespondence  bool    `db:"same_as_correspondence" json:"sameAsCorrespondence"`
}

// Role is a named permission set.
type Role struct {
	Base
	Name        string `db:"name" json:"name" validate:"required"`
	Description string `db:"description" json:"description"`
}

// Normalize mirrors the correspondence address while the same-as flag is set.
func (s *Student) Normalize() {
	if s.SameAsCorrespondence {
		s.PermanentAddress = s.CorrespondenceAddress
	}
}
