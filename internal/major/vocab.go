package major

// All is the "no constraint" sentinel used by single-value filter fields.
const All = "全部"

// Tuition range labels.
const (
	TuitionBelow5000    = "5000元以下"
	Tuition5000To10000  = "5000-10000元"
	Tuition10000To20000 = "10000-20000元"
	TuitionAbove20000   = "20000元以上"
)

// Regions offered by the preference form.
var Regions = []string{"北京", "上海", "广东", "浙江", "江苏", "四川", "湖北", "陕西", "山东", "河南"}

// Categories is the fixed set of 13 discipline categories.
var Categories = []string{
	"哲学", "经济学", "法学", "教育学", "文学", "历史学", "理学",
	"工学", "农学", "医学", "军事学", "管理学", "艺术学",
}

// Subjects is the elective subject vocabulary of the Zhejiang 3+3 system.
var Subjects = []string{"政治", "历史", "地理", "物理", "化学", "生物", "技术"}

// SchoolingLengths lists the schooling length filter options.
var SchoolingLengths = []string{All, "4年", "5年", "其他"}

// TuitionRanges lists the tuition bucket filter options.
var TuitionRanges = []string{All, TuitionBelow5000, Tuition5000To10000, Tuition10000To20000, TuitionAbove20000}

// UniversityTiers lists the tier filter options.
var UniversityTiers = []string{All, "985", "211", "双一流", "普通本科", "专科"}

// University levels and types.
var (
	UniversityLevels = []string{"本科", "专科"}
	UniversityTypes  = []string{"公办", "民办", "中外合作"}
)

// IsSubject reports whether s is a known elective subject.
func IsSubject(s string) bool {
	for _, v := range Subjects {
		if v == s {
			return true
		}
	}
	return false
}

// IsCategory reports whether s is one of the 13 categories.
func IsCategory(s string) bool {
	for _, v := range Categories {
		if v == s {
			return true
		}
	}
	return false
}
