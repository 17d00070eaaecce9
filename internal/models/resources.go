package models

import "strings"

// Field names a form field and the label used in messages.
type Field struct {
	Key   string
	Label string
}

// SameAs copies every field under From into To while Flag is set.
type SameAs struct {
	Flag string
	From string
	To   string
}

// Resource describes one backend collection: how the server stores it and
// how the dashboard lists and edits it.
type Resource struct {
	Name  string
	Title string
	// Path is relative to the API origin, e.g. "v1/batch".
	Path string
	// BareList marks endpoints that answer list requests with a plain array.
	BareList bool

	Table         string
	Columns       []string
	SearchColumns []string
	SortColumns   []string

	Required     []Field
	DateFields   []string
	NumberFields []string
	BoolFields   []string
	Projections  []SameAs
	// Display lists the JSON keys rendered as table columns.
	Display []string
}

var (
	BatchResource = Resource{
		Name: "batch", Title: "Batch", Path: "v1/batch",
		Table:         "batches",
		Columns:       []string{"name", "passing_year", "school_open_date"},
		SearchColumns: []string{"name"},
		SortColumns:   []string{"name", "passing_year"},
		Required: []Field{
			{Key: "name", Label: "Name"},
			{Key: "passingYear", Label: "Passing year"},
			{Key: "schoolOpenDate", Label: "School open date"},
		},
		DateFields:   []string{"schoolOpenDate"},
		NumberFields: []string{"passingYear"},
		Display:      []string{"id", "name", "passingYear", "schoolOpenDate"},
	}
	ClassResource = Resource{
		Name: "class", Title: "Class", Path: "v1/class",
		Table:         "classes",
		Columns:       []string{"name", "description"},
		SearchColumns: []string{"name", "description"},
		SortColumns:   []string{"name"},
		Required:      []Field{{Key: "name", Label: "Class name"}},
		Display:       []string{"id", "name", "description"},
	}
	DivisionResource = Resource{
		Name: "division", Title: "Division", Path: "v1/division",
		Table:         "divisions",
		Columns:       []string{"name", "class_id"},
		SearchColumns: []string{"name"},
		SortColumns:   []string{"name"},
		Required:      []Field{{Key: "name", Label: "Division name"}, {Key: "classId", Label: "Class"}},
		Display:       []string{"id", "name", "classId"},
	}
	SectionResource = Resource{
		Name: "section", Title: "Section", Path: "v1/section",
		Table:         "sections",
		Columns:       []string{"name", "class_id"},
		SearchColumns: []string{"name"},
		SortColumns:   []string{"name"},
		Required:      []Field{{Key: "name", Label: "Section name"}, {Key: "classId", Label: "Class"}},
		Display:       []string{"id", "name", "classId"},
	}
	SubjectResource = Resource{
		Name: "subject", Title: "Subject", Path: "v1/subject",
		Table:         "subjects",
		Columns:       []string{"name", "code", "class_id"},
		SearchColumns: []string{"name", "code"},
		SortColumns:   []string{"name", "code"},
		Required:      []Field{{Key: "name", Label: "Subject name"}, {Key: "code", Label: "Subject code"}},
		Display:       []string{"id", "code", "name", "classId"},
	}
	SchoolResource = Resource{
		Name: "school", Title: "School", Path: "v1/school",
		Table:         "schools",
		Columns:       []string{"school_code", "name", "principal_name", "contact", "medium", "board", "address"},
		SearchColumns: []string{"name", "school_code", "principal_name"},
		SortColumns:   []string{"name", "school_code"},
		Required: []Field{
			{Key: "schoolCode", Label: "School code"},
			{Key: "name", Label: "School name"},
			{Key: "principalName", Label: "Principal name"},
			{Key: "contact", Label: "Contact"},
		},
		Display: []string{"id", "schoolCode", "name", "principalName", "contact", "medium", "board"},
	}
	TeacherResource = Resource{
		Name: "teacher", Title: "Teacher", Path: "v1/teacher",
		Table:         "teachers",
		Columns:       []string{"name", "email", "contact", "subject_id", "date_of_joining"},
		SearchColumns: []string{"name", "email"},
		SortColumns:   []string{"name", "email"},
		Required:      []Field{{Key: "name", Label: "Teacher name"}, {Key: "contact", Label: "Contact"}},
		DateFields:    []string{"dateOfJoining"},
		Display:       []string{"id", "name", "email", "contact", "dateOfJoining"},
	}
	StudentResource = Resource{
		Name: "students", Title: "Student", Path: "v1/students",
		Table: "students",
		Columns: []string{
			"name", "roll_number", "class_id", "division_id", "date_of_birth", "guardian_name",
			"contact", "correspondence_address", "permanent_address", "same_as_correspondence",
		},
		SearchColumns: []string{"name", "roll_number", "guardian_name"},
		SortColumns:   []string{"name", "roll_number"},
		Required: []Field{
			{Key: "name", Label: "Student name"},
			{Key: "rollNumber", Label: "Roll number"},
			{Key: "classId", Label: "Class"},
			{Key: "dateOfBirth", Label: "Date of birth"},
		},
		DateFields: []string{"dateOfBirth"},
		BoolFields: []string{"sameAsCorrespondence"},
		Projections: []SameAs{
			{Flag: "sameAsCorrespondence", From: "correspondenceAddress", To: "permanentAddress"},
		},
		Display: []string{"id", "rollNumber", "name", "classId", "dateOfBirth", "guardianName"},
	}
	RoleResource = Resource{
		Name: "role", Title: "Role", Path: "v1/role",
		BareList:      true,
		Table:         "roles",
		Columns:       []string{"name", "description"},
		SearchColumns: []string{"name"},
		SortColumns:   []string{"name"},
		Required:      []Field{{Key: "name", Label: "Role name"}},
		Display:       []string{"id", "name", "description"},
	}
)

// Resources returns every collection in menu order.
func Resources() []Resource {
	return []Resource{
		SchoolResource, ClassResource, DivisionResource, SectionResource, BatchResource,
		SubjectResource, TeacherResource, StudentResource, RoleResource,
	}
}

// LookupResource finds a collection by name; "student" also matches "students".
func LookupResource(name string) (Resource, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range Resources() {
		if r.Name == name || strings.TrimSuffix(r.Name, "s") == strings.TrimSuffix(name, "s") {
			return r, true
		}
	}
	return Resource{}, false
}

// Endpoint returns the collection path rooted at prefix, e.g. "/v1/batch".
func (r Resource) Endpoint() string {
	return "/" + strings.TrimLeft(r.Path, "/")
}

// IsDateField reports whether key uses the DD/MM/YYYY API format.
func (r Resource) IsDateField(key string) bool {
	return contains(r.DateFields, key)
}

func contains(list []string, key string) bool {
	for _, item := range list {
		if item == key {
			return true
		}
	}
	return false
}
