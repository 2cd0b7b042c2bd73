// Package major defines the admission record model shared by the catalog,
// the filter and view engines, and the recommendation flow.
package major

import "strings"

// UniversityDetails describes the institution offering a major.
type UniversityDetails struct {
	University     string `json:"university" yaml:"university"`
	Region         string `json:"region" yaml:"region"`
	Province       string `json:"province" yaml:"province"`
	UniversityTier string `json:"universityTier" yaml:"universityTier"`
	// UniversityLevel is 本科 or 专科.
	UniversityLevel string `json:"universityLevel" yaml:"universityLevel"`
	// UniversityType is 公办, 民办 or 中外合作.
	UniversityType string `json:"universityType" yaml:"universityType"`
}

// Major is one admission record: a program at a university with its
// admission history. Nil pointers mean "no data", never zero.
type Major struct {
	UniversityDetails `yaml:",inline"`

	MajorName string `json:"majorName" yaml:"majorName"`
	MajorCode string `json:"majorCode" yaml:"majorCode"`

	AdmissionScore2017   *int `json:"admissionScore2017" yaml:"admissionScore2017"`
	AdmissionRanking2017 *int `json:"admissionRanking2017" yaml:"admissionRanking2017"`
	AdmissionScore2018   *int `json:"admissionScore2018" yaml:"admissionScore2018"`
	AdmissionRanking2018 *int `json:"admissionRanking2018" yaml:"admissionRanking2018"`
	AdmissionScore2019   *int `json:"admissionScore2019" yaml:"admissionScore2019"`
	AdmissionRanking2019 *int `json:"admissionRanking2019" yaml:"admissionRanking2019"`
	AdmissionScore2020   *int `json:"admissionScore2020" yaml:"admissionScore2020"`
	AdmissionRanking2020 *int `json:"admissionRanking2020" yaml:"admissionRanking2020"`
	AdmissionScore2021   *int `json:"admissionScore2021" yaml:"admissionScore2021"`
	AdmissionRanking2021 *int `json:"admissionRanking2021" yaml:"admissionRanking2021"`
	AdmissionScore2022   *int `json:"admissionScore2022" yaml:"admissionScore2022"`
	AdmissionRanking2022 *int `json:"admissionRanking2022" yaml:"admissionRanking2022"`
	AdmissionScore2023   *int `json:"admissionScore2023" yaml:"admissionScore2023"`
	AdmissionRanking2023 *int `json:"admissionRanking2023" yaml:"admissionRanking2023"`
	AdmissionScore2024   *int `json:"admissionScore2024" yaml:"admissionScore2024"`
	AdmissionRanking2024 *int `json:"admissionRanking2024" yaml:"admissionRanking2024"`

	// EstimatedRanking2025 is a precomputed projection.
	EstimatedRanking2025 *int `json:"estimatedRanking2025" yaml:"estimatedRanking2025"`

	MajorCategory   string `json:"majorCategory" yaml:"majorCategory"`
	SchoolingLength string `json:"schoolingLength" yaml:"schoolingLength"`
	// Tuition is the annual fee in yuan; nil when unlisted.
	Tuition *int `json:"tuition" yaml:"tuition"`
	// SubjectRequirements is a human-readable expression such as
	// "物理+化学" or "物理/历史均可".
	SubjectRequirements *string `json:"subjectRequirements" yaml:"subjectRequirements"`

	HasPostgraduateRecommendation bool `json:"hasPostgraduateRecommendation" yaml:"hasPostgraduateRecommendation"`

	// AdmissionProbability is a 0-100 percentage.
	AdmissionProbability *int `json:"admissionProbability" yaml:"admissionProbability"`
}

// Key is the composite identity of a record. Major codes alone repeat
// across universities.
type Key struct {
	University string
	MajorCode  string
}

// Key returns the composite key of m.
func (m Major) Key() Key {
	return Key{University: m.University, MajorCode: m.MajorCode}
}

// String renders the key as "university/majorCode".
func (k Key) String() string {
	return k.University + "/" + k.MajorCode
}

// Requirements returns the subject requirement text, or "" when absent.
func (m Major) Requirements() string {
	if m.SubjectRequirements == nil {
		return ""
	}
	return *m.SubjectRequirements
}

// Filter selects catalog records. Every field is optional; empty fields
// and the 全部 sentinel impose no constraint.
type Filter struct {
	Regions         []string `json:"regions,omitempty" form:"regions"`
	MajorCategories []string `json:"majorCategories,omitempty" form:"majorCategories"`
	SchoolingLength string   `json:"schoolingLength,omitempty" form:"schoolingLength"`
	TuitionRange    string   `json:"tuitionRange,omitempty" form:"tuitionRange"`
	UniversityTier  string   `json:"universityTier,omitempty" form:"universityTier"`
}

// IsEmpty reports whether f constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Regions) == 0 &&
		len(f.MajorCategories) == 0 &&
		IsUnconstrained(f.SchoolingLength) &&
		IsUnconstrained(f.TuitionRange) &&
		IsUnconstrained(f.UniversityTier)
}

// IsUnconstrained reports whether a single-value filter field is blank or 全部.
func IsUnconstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

// Clone returns a deep copy of m so callers can never alias catalog state.
func (m Major) Clone() Major {
	c := m
	ptrs := []**int{
		&c.AdmissionScore2017, &c.AdmissionRanking2017,
		&c.AdmissionScore2018, &c.AdmissionRanking2018,
		&c.AdmissionScore2019, &c.AdmissionRanking2019,
		&c.AdmissionScore2020, &c.AdmissionRanking2020,
		&c.AdmissionScore2021, &c.AdmissionRanking2021,
		&c.AdmissionScore2022, &c.AdmissionRanking2022,
		&c.AdmissionScore2023, &c.AdmissionRanking2023,
		&c.AdmissionScore2024, &c.AdmissionRanking2024,
		&c.EstimatedRanking2025, &c.Tuition, &c.AdmissionProbability,
	}
	for _, p := range ptrs {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if c.SubjectRequirements != nil {
		s := *c.SubjectRequirements
		c.SubjectRequirements = &s
	}
	return c
}

// CloneAll deep-copies a slice of records.
func CloneAll(list []Major) []Major {
	out := make([]Major, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

// Int returns a pointer to v. Handy for fixtures.
func Int(v int) *int { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
