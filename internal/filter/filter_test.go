package filter

import (
	"testing"

	"github.com/zjgaokao/major-advisor/internal/data"
	"github.com/zjgaokao/major-advisor/internal/major"
)

func withTuition(t *int) *major.Major {
	return &major.Major{Tuition: t}
}

func TestInTuitionRange_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tuition *int
		label   string
		want    bool
	}{
		{"4999 below 5000", major.Int(4999), major.TuitionBelow5000, true},
		{"5000 not below 5000", major.Int(5000), major.TuitionBelow5000, false},
		{"5000 in 5000-10000", major.Int(5000), major.Tuition5000To10000, true},
		{"10000 in 5000-10000", major.Int(10000), major.Tuition5000To10000, true},
		{"10000 not in 10000-20000", major.Int(10000), major.Tuition10000To20000, false},
		{"10001 in 10000-20000", major.Int(10001), major.Tuition10000To20000, true},
		{"10001 not in 5000-10000", major.Int(10001), major.Tuition5000To10000, false},
		{"20000 in 10000-20000", major.Int(20000), major.Tuition10000To20000, true},
		{"20000 not above 20000", major.Int(20000), major.TuitionAbove20000, false},
		{"20000 not in 5000-10000", major.Int(20000), major.Tuition5000To10000, false},
		{"20001 above 20000", major.Int(20001), major.TuitionAbove20000, true},
		{"nil below 5000", nil, major.TuitionBelow5000, false},
		{"nil in 5000-10000", nil, major.Tuition5000To10000, false},
		{"nil above 20000", nil, major.TuitionAbove20000, false},
		{"nil with 全部", nil, major.All, true},
		{"nil with blank", nil, "", true},
		{"unknown label", major.Int(6000), "6000元左右", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InTuitionRange(tt.tuition, tt.label); got != tt.want {
				t.Errorf("InTuitionRange(%v, %q) = %v, want %v", tt.tuition, tt.label, got, tt.want)
			}
		})
	}
}

func TestInTuitionRange_EachValueInOneBucket(t *testing.T) {
	t.Parallel()

	buckets := major.TuitionRanges[1:]
	for _, v := range []int{0, 4999, 5000, 7500, 10000, 10001, 15000, 20000, 20001, 100000} {
		n := 0
		for _, b := range buckets {
			if InTuitionRange(major.Int(v), b) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("tuition %d matched %d buckets, want exactly 1", v, n)
		}
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	m := &major.Major{
		UniversityDetails: major.UniversityDetails{University: "东南大学", Region: "南京", UniversityTier: "985"},
		MajorCategory:     "工学",
		SchoolingLength:   "5年",
		Tuition:           major.Int(6800),
	}

	tests := []struct {
		name   string
		filter major.Filter
		want   bool
	}{
		{"empty filter", major.Filter{}, true},
		{"region member", major.Filter{Regions: []string{"北京", "南京"}}, true},
		{"region not member", major.Filter{Regions: []string{"北京"}}, false},
		{"category member", major.Filter{MajorCategories: []string{"工学"}}, true},
		{"category not member", major.Filter{MajorCategories: []string{"理学", "医学"}}, false},
		{"schooling equal", major.Filter{SchoolingLength: "5年"}, true},
		{"schooling differs", major.Filter{SchoolingLength: "4年"}, false},
		{"schooling all", major.Filter{SchoolingLength: major.All}, true},
		{"schooling unlisted value", major.Filter{SchoolingLength: "其他"}, false},
		{"tier equal", major.Filter{UniversityTier: "985"}, true},
		{"tier differs", major.Filter{UniversityTier: "211"}, false},
		{"tier all", major.Filter{UniversityTier: major.All}, true},
		{"tuition bucket", major.Filter{TuitionRange: major.Tuition5000To10000}, true},
		{"tuition other bucket", major.Filter{TuitionRange: major.TuitionAbove20000}, false},
		{
			"all fields",
			major.Filter{
				Regions:         []string{"南京"},
				MajorCategories: []string{"工学"},
				SchoolingLength: "5年",
				TuitionRange:    major.Tuition5000To10000,
				UniversityTier:  "985",
			},
			true,
		},
		{
			"one failing field",
			major.Filter{Regions: []string{"南京"}, UniversityTier: "普通本科"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Match(m, tt.filter); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_NullTuitionNeverInBucket(t *testing.T) {
	t.Parallel()

	records, err := data.Load(data.DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range major.TuitionRanges[1:] {
		for _, m := range Apply(records, major.Filter{TuitionRange: label}) {
			if m.Tuition == nil {
				t.Errorf("bucket %q matched %s with null tuition", label, m.Key())
			}
		}
	}
	if !Match(withTuition(nil), major.Filter{TuitionRange: major.All}) {
		t.Error("全部 should not exclude null tuition")
	}
}

func TestApply_Catalog(t *testing.T) {
	t.Parallel()

	records, err := data.Load(data.DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}

	beijing := Apply(records, major.Filter{Regions: []string{"北京"}})
	if len(beijing) != 7 {
		t.Fatalf("Apply(regions=北京) = %d records, want 7", len(beijing))
	}
	for _, m := range beijing {
		if m.Region != "北京" {
			t.Errorf("unexpected region %q", m.Region)
		}
	}

	again := Apply(records, major.Filter{Regions: []string{"北京"}})
	if len(again) != len(beijing) {
		t.Error("Apply is not idempotent")
	}
	for i := range beijing {
		if beijing[i].Key() != again[i].Key() {
			t.Errorf("order differs at %d", i)
		}
	}

	bucket := Apply(records, major.Filter{TuitionRange: major.Tuition5000To10000})
	found := map[int]bool{}
	for _, m := range bucket {
		found[*m.Tuition] = true
	}
	if !found[5000] || !found[10000] {
		t.Error("5000-10000元 should include tuition 5000 and 10000")
	}
	if found[20000] {
		t.Error("5000-10000元 should exclude tuition 20000")
	}
}

func TestApply_Monotonic(t *testing.T) {
	t.Parallel()

	records, err := data.Load(data.DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}

	chain := []major.Filter{
		{},
		{MajorCategories: []string{"工学", "理学", "医学"}},
		{MajorCategories: []string{"工学", "理学", "医学"}, SchoolingLength: "4年"},
		{MajorCategories: []string{"工学", "理学", "医学"}, SchoolingLength: "4年", TuitionRange: major.Tuition5000To10000},
		{MajorCategories: []string{"工学", "理学", "医学"}, SchoolingLength: "4年", TuitionRange: major.Tuition5000To10000, UniversityTier: "985"},
		{MajorCategories: []string{"工学", "理学", "医学"}, SchoolingLength: "4年", TuitionRange: major.Tuition5000To10000, UniversityTier: "985", Regions: []string{"上海"}},
	}

	prev := len(records) + 1
	for i, f := range chain {
		n := len(Apply(records, f))
		if n > prev {
			t.Errorf("filter %d returned %d records, more than the looser filter (%d)", i, n, prev)
		}
		prev = n
	}
}

func TestExclude(t *testing.T) {
	t.Parallel()

	list := []major.Major{
		{UniversityDetails: major.UniversityDetails{University: "a", Region: "北京"}, MajorCategory: "工学"},
		{UniversityDetails: major.UniversityDetails{University: "b", Region: "杭州"}, MajorCategory: "医学"},
		{UniversityDetails: major.UniversityDetails{University: "c", Region: "杭州"}, MajorCategory: "工学"},
	}

	tests := []struct {
		name string
		ex   Exclusion
		want []string
	}{
		{"nothing excluded", Exclusion{}, []string{"a", "b", "c"}},
		{"region", Exclusion{Regions: []string{"北京"}}, []string{"b", "c"}},
		{"category", Exclusion{Categories: []string{"医学"}}, []string{"a", "c"}},
		{"both", Exclusion{Regions: []string{"北京"}, Categories: []string{"医学"}}, []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Exclude(list, tt.ex)
			if len(got) != len(tt.want) {
				t.Fatalf("Exclude() = %d records, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.University != tt.want[i] {
					t.Errorf("Exclude()[%d] = %s, want %s", i, m.University, tt.want[i])
				}
			}
		})
	}
}

func TestExclude_EmptyReturnsCopy(t *testing.T) {
	t.Parallel()

	list := []major.Major{
		{UniversityDetails: major.UniversityDetails{University: "a", Region: "北京"}},
		{UniversityDetails: major.UniversityDetails{University: "b", Region: "杭州"}},
	}
	got := Exclude(list, Exclusion{})
	got[0].University = "changed"

	if list[0].University != "a" {
		t.Error("Exclude() with no exclusion shares its backing array with the input")
	}
}
