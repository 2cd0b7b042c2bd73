package major

import "sort"

// Field names a sortable record attribute by its JSON name.
type Field string

// FieldKind says how a field compares.
type FieldKind int

const (
	KindNumber FieldKind = iota
	KindText
)

// Commonly referenced fields.
const (
	FieldMajorName            Field = "majorName"
	FieldUniversity           Field = "university"
	FieldAdmissionRanking2024 Field = "admissionRanking2024"
	FieldAdmissionScore2024   Field = "admissionScore2024"
	FieldTuition              Field = "tuition"
	FieldAdmissionProbability Field = "admissionProbability"
)

type fieldSpec struct {
	kind FieldKind
	num  func(m *Major) *int
	text func(m *Major) *string
}

func textField(get func(m *Major) string) fieldSpec {
	return fieldSpec{kind: KindText, text: func(m *Major) *string {
		s := get(m)
		return &s
	}}
}

func numField(get func(m *Major) *int) fieldSpec {
	return fieldSpec{kind: KindNumber, num: get}
}

var fieldSpecs = map[Field]fieldSpec{
	"majorName":       textField(func(m *Major) string { return m.MajorName }),
	"majorCode":       textField(func(m *Major) string { return m.MajorCode }),
	"university":      textField(func(m *Major) string { return m.University }),
	"region":          textField(func(m *Major) string { return m.Region }),
	"province":        textField(func(m *Major) string { return m.Province }),
	"universityTier":  textField(func(m *Major) string { return m.UniversityTier }),
	"universityLevel": textField(func(m *Major) string { return m.UniversityLevel }),
	"universityType":  textField(func(m *Major) string { return m.UniversityType }),
	"majorCategory":   textField(func(m *Major) string { return m.MajorCategory }),
	"schoolingLength": textField(func(m *Major) string { return m.SchoolingLength }),
	"subjectRequirements": {kind: KindText, text: func(m *Major) *string {
		return m.SubjectRequirements
	}},
	"hasPostgraduateRecommendation": numField(func(m *Major) *int {
		if m.HasPostgraduateRecommendation {
			return Int(1)
		}
		return Int(0)
	}),

	"admissionScore2017":   numField(func(m *Major) *int { return m.AdmissionScore2017 }),
	"admissionRanking2017": numField(func(m *Major) *int { return m.AdmissionRanking2017 }),
	"admissionScore2018":   numField(func(m *Major) *int { return m.AdmissionScore2018 }),
	"admissionRanking2018": numField(func(m *Major) *int { return m.AdmissionRanking2018 }),
	"admissionScore2019":   numField(func(m *Major) *int { return m.AdmissionScore2019 }),
	"admissionRanking2019": numField(func(m *Major) *int { return m.AdmissionRanking2019 }),
	"admissionScore2020":   numField(func(m *Major) *int { return m.AdmissionScore2020 }),
	"admissionRanking2020": numField(func(m *Major) *int { return m.AdmissionRanking2020 }),
	"admissionScore2021":   numField(func(m *Major) *int { return m.AdmissionScore2021 }),
	"admissionRanking2021": numField(func(m *Major) *int { return m.AdmissionRanking2021 }),
	"admissionScore2022":   numField(func(m *Major) *int { return m.AdmissionScore2022 }),
	"admissionRanking2022": numField(func(m *Major) *int { return m.AdmissionRanking2022 }),
	"admissionScore2023":   numField(func(m *Major) *int { return m.AdmissionScore2023 }),
	"admissionRanking2023": numField(func(m *Major) *int { return m.AdmissionRanking2023 }),
	"admissionScore2024":   numField(func(m *Major) *int { return m.AdmissionScore2024 }),
	"admissionRanking2024": numField(func(m *Major) *int { return m.AdmissionRanking2024 }),
	"estimatedRanking2025": numField(func(m *Major) *int { return m.EstimatedRanking2025 }),
	"tuition":              numField(func(m *Major) *int { return m.Tuition }),
	"admissionProbability": numField(func(m *Major) *int { return m.AdmissionProbability }),
}

// ParseField resolves a JSON field name to a sortable Field.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldSpecs[f]
	return f, ok
}

// Fields returns every sortable field name in lexical order.
func Fields() []Field {
	out := make([]Field, 0, len(fieldSpecs))
	for f := range fieldSpecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Kind reports how f compares. Unknown fields report KindText.
func (f Field) Kind() FieldKind {
	spec, ok := fieldSpecs[f]
	if !ok {
		return KindText
	}
	return spec.kind
}

// Number returns the numeric value of f on m, or nil when absent or when f
// is not numeric.
func (f Field) Number(m *Major) *int {
	spec, ok := fieldSpecs[f]
	if !ok || spec.num == nil {
		return nil
	}
	return spec.num(m)
}

// Text returns the text value of f on m, or nil when absent or when f is
// not textual.
func (f Field) Text(m *Major) *string {
	spec, ok := fieldSpecs[f]
	if !ok || spec.text == nil {
		return nil
	}
	return spec.text(m)
}

// IsNull reports whether m has no value for f.
func (f Field) IsNull(m *Major) bool {
	if f.Kind() == KindNumber {
		return f.Number(m) == nil
	}
	return f.Text(m) == nil
}
