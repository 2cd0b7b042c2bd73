package genai

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()
	prompt := BuildPrompt(Request{
		Score:              642,
		Ranking:            5230,
		Subjects:           []string{"物理", "化学", "生物"},
		IntendedRegions:    []string{"北京", "上海"},
		ExcludedCategories: []string{"医学"},
	})

	wants := []string{
		"考生分数：642",
		"全省排名：5230",
		"选考科目：物理, 化学, 生物",
		"意向地区：北京, 上海",
		"意向专业类别：无特殊偏好",
		"排除地区：无",
		"排除专业类别：医学",
		"getMajorRecommendations",
		"物理+化学",
		`"recommendedMajors"`,
		`"reasoning"`,
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_NoPreferences(t *testing.T) {
	t.Parallel()
	prompt := BuildPrompt(Request{Score: 600, Ranking: 20000, Subjects: []string{"历史", "地理", "政治"}})
	for _, want := range []string{"意向地区：无特殊偏好", "意向专业类别：无特殊偏好", "排除地区：无\n", "排除专业类别：无\n"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
