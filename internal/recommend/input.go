// Package recommend turns a student's profile into a list of majors, either
// through the LLM tool-calling flow or, without a configured model, straight
// from the catalog.
package recommend

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/filter"
	"github.com/zjgaokao/major-advisor/internal/genai"
	"github.com/zjgaokao/major-advisor/internal/major"
)

// Score bounds of the Zhejiang gaokao.
const (
	MinScore = 0
	MaxScore = 750
)

// SubjectCount is the number of elective subjects a student takes.
const SubjectCount = 3

// User-facing validation messages.
const (
	MsgMissingScoreOrRanking = "缺少考生分数或排名信息。"
	MsgSubjectCount          = "必须选择 3 个选考科目。"
	MsgScoreRange            = "考生分数必须在 0 到 750 之间。"
	MsgRankingPositive       = "全省排名必须是正整数。"
	MsgDuplicateSubject      = "选考科目不能重复。"
)

// Input is one submission of the preference form.
type Input struct {
	Score    *int     `json:"gaokaoScore"`
	Ranking  *int     `json:"provinceRanking"`
	Subjects []string `json:"selectedSubjects"`

	IntendedRegions         []string `json:"intendedRegions,omitempty"`
	IntendedMajorCategories []string `json:"intendedMajorCategories,omitempty"`
	ExcludedRegions         []string `json:"excludedRegions,omitempty"`
	ExcludedMajorCategories []string `json:"excludedMajorCategories,omitempty"`
}

// Normalize trims every list entry and drops blanks.
func (in *Input) Normalize() {
	in.Subjects = clean(in.Subjects)
	in.IntendedRegions = clean(in.IntendedRegions)
	in.IntendedMajorCategories = clean(in.IntendedMajorCategories)
	in.ExcludedRegions = clean(in.ExcludedRegions)
	in.ExcludedMajorCategories = clean(in.ExcludedMajorCategories)
}

func clean(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks the hard preconditions of the flow. It runs before any
// external call.
func (in Input) Validate() error {
	if in.Score == nil {
		return apperrors.NewValidationError("gaokaoScore", MsgMissingScoreOrRanking)
	}
	if in.Ranking == nil {
		return apperrors.NewValidationError("provinceRanking", MsgMissingScoreOrRanking)
	}
	if len(in.Subjects) != SubjectCount {
		return apperrors.NewValidationError("selectedSubjects", MsgSubjectCount)
	}
	if *in.Score < MinScore || *in.Score > MaxScore {
		return apperrors.NewValidationError("gaokaoScore", MsgScoreRange)
	}
	if *in.Ranking < 1 {
		return apperrors.NewValidationError("provinceRanking", MsgRankingPositive)
	}
	for i, s := range in.Subjects {
		if !major.IsSubject(s) {
			return apperrors.NewValidationError("selectedSubjects", fmt.Sprintf("未知的选考科目：%s。", s))
		}
		if slices.Contains(in.Subjects[:i], s) {
			return apperrors.NewValidationError("selectedSubjects", MsgDuplicateSubject)
		}
	}
	return nil
}

// Exclusion returns the hard exclusions of in.
func (in Input) Exclusion() filter.Exclusion {
	return filter.Exclusion{Regions: in.ExcludedRegions, Categories: in.ExcludedMajorCategories}
}

// CoarseFilter is the catalog filter built from the form's intentions.
func (in Input) CoarseFilter() major.Filter {
	return major.Filter{Regions: in.IntendedRegions, MajorCategories: in.IntendedMajorCategories}
}

// request converts a validated input to the prompt model.
func (in Input) request() genai.Request {
	return genai.Request{
		Score:              *in.Score,
		Ranking:            *in.Ranking,
		Subjects:           in.Subjects,
		IntendedRegions:    in.IntendedRegions,
		IntendedCategories: in.IntendedMajorCategories,
		ExcludedRegions:    in.ExcludedRegions,
		ExcludedCategories: in.ExcludedMajorCategories,
	}
}
