// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PersonalInfo holds the contact block at the top of a CV.
type PersonalInfo struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
	Location string `json:"location" yaml:"location"`
}

// Experience is one position in the work history.
type Experience struct {
	Company          string `json:"company" yaml:"company"`
	Position         string `json:"position" yaml:"position"`
	StartDate        string `json:"startDate" yaml:"startDate"`
	EndDate          string `json:"endDate" yaml:"endDate"`
	Responsibilities string `json:"responsibilities" yaml:"responsibilities"`
}

// Education is one degree or course of study.
type Education struct {
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Year        string `json:"year" yaml:"year"`
	GPA         string `json:"gpa" yaml:"gpa"`
}

// Certification is one professional certificate.
type Certification struct {
	Name string `json:"name" yaml:"name"`
	Year string `json:"year" yaml:"year"`
}

// CvRecord is the structured, schema-complete representation of one CV.
//
// Every leaf is a string and every slice is non-nil once the record has
// passed through record.Parse or record.Normalize. Slice order is display
// order; nothing downstream sorts or deduplicates.
type CvRecord struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo" yaml:"personalInfo"`
	Summary        string          `json:"summary" yaml:"summary"`
	Experience     []Experience    `json:"experience" yaml:"experience"`
	Education      []Education     `json:"education" yaml:"education"`
	Skills         []string        `json:"skills" yaml:"skills"`
	Certifications []Certification `json:"certifications" yaml:"certifications"`
	Languages      string          `json:"languages" yaml:"languages"`
}
