package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/major"
	"github.com/zjgaokao/major-advisor/internal/recommend"
	"github.com/zjgaokao/major-advisor/internal/search"
)

// defaultSortKey orders every list that has no explicit sort.
const defaultSortKey = major.FieldAdmissionRanking2024

// Query parameter validation messages.
const (
	MsgInvalidKey     = "无效的院校或专业代码。"
	MsgInvalidOrder   = "排序方向必须是 asc 或 desc。"
	MsgInvalidNumber  = "考生分数和排名必须是整数。"
	MsgInvalidRequest = "请求体不是有效的 JSON。"
)

// listParam collects a multi-value parameter given either repeated
// (?regions=a&regions=b) or comma-joined (?regions=a,b).
func listParam(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for part := range strings.SplitSeq(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// refinementFilter reads the single-value filter fields.
func refinementFilter(c *gin.Context) major.Filter {
	return major.Filter{
		SchoolingLength: strings.TrimSpace(c.Query("schoolingLength")),
		TuitionRange:    strings.TrimSpace(c.Query("tuitionRange")),
		UniversityTier:  strings.TrimSpace(c.Query("universityTier")),
	}
}

// catalogFilter reads the full catalog filter.
func catalogFilter(c *gin.Context) major.Filter {
	f := refinementFilter(c)
	f.Regions = listParam(c, "regions")
	f.MajorCategories = listParam(c, "majorCategories")
	return f
}

// viewQuery reads q, sort and order. Without sort the default key applies.
func viewQuery(c *gin.Context) (search.Query, error) {
	key := defaultSortKey
	if raw := strings.TrimSpace(c.Query("sort")); raw != "" {
		f, ok := major.ParseField(raw)
		if !ok {
			return search.Query{}, apperrors.NewValidationError("sort", fmt.Sprintf("不支持的排序字段：%s。", raw))
		}
		key = f
	}
	dir, ok := search.ParseDirection(c.Query("order"))
	if !ok {
		return search.Query{}, apperrors.NewValidationError("order", MsgInvalidOrder)
	}
	return search.Query{Text: c.Query("q"), SortKey: key, Direction: dir}, nil
}

// optionalInt parses an integer parameter; blank means absent.
func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil //nolint:nilnil // absent parameter is not an error
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name, MsgInvalidNumber)
	}
	return &n, nil
}

// recommendationQuery builds an Input from GET parameters.
func recommendationQuery(c *gin.Context) (recommend.Input, error) {
	score, err := optionalInt(c, "score")
	if err != nil {
		return recommend.Input{}, err
	}
	ranking, err := optionalInt(c, "ranking")
	if err != nil {
		return recommend.Input{}, err
	}
	return recommend.Input{
		Score:                   score,
		Ranking:                 ranking,
		Subjects:                listParam(c, "subjects"),
		IntendedRegions:         listParam(c, "regions"),
		IntendedMajorCategories: listParam(c, "categories"),
		ExcludedRegions:         listParam(c, "excludedRegions"),
		ExcludedMajorCategories: listParam(c, "excludedCategories"),
	}, nil
}
