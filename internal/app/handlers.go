package app

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zjgaokao/major-advisor/internal/ctxutil"
	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/export"
	"github.com/zjgaokao/major-advisor/internal/filter"
	"github.com/zjgaokao/major-advisor/internal/major"
	"github.com/zjgaokao/major-advisor/internal/recommend"
	"github.com/zjgaokao/major-advisor/internal/search"
)

// optionsResponse lists the vocabularies a form needs.
type optionsResponse struct {
	Regions          []string      `json:"regions"`
	MajorCategories  []string      `json:"majorCategories"`
	Subjects         []string      `json:"subjects"`
	SchoolingLengths []string      `json:"schoolingLengths"`
	TuitionRanges    []string      `json:"tuitionRanges"`
	UniversityTiers  []string      `json:"universityTiers"`
	SortFields       []major.Field `json:"sortFields"`
	DefaultSort      major.Field   `json:"defaultSort"`
	LLMEnabled       bool          `json:"llmEnabled"`
}

type majorsResponse struct {
	Majors []major.Major `json:"majors"`
	Total  int           `json:"total"`
}

type recommendationResponse struct {
	*recommend.Result
	Total int `json:"total"`
}

func (a *Application) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		Regions:          major.Regions,
		MajorCategories:  major.Categories,
		Subjects:         major.Subjects,
		SchoolingLengths: major.SchoolingLengths,
		TuitionRanges:    major.TuitionRanges,
		UniversityTiers:  major.UniversityTiers,
		SortFields:       major.Fields(),
		DefaultSort:      defaultSortKey,
		LLMEnabled:       a.service.LLMEnabled(),
	})
}

// catalogView runs the catalog query described by the request parameters.
func (a *Application) catalogView(c *gin.Context) ([]major.Major, error) {
	q, err := viewQuery(c)
	if err != nil {
		return nil, err
	}
	list, err := a.catalog.ListMajors(c.Request.Context(), catalogFilter(c))
	if err != nil {
		return nil, apperrors.NewWrapper("catalog", "list_majors").Wrap(err, "读取专业数据失败")
	}
	return search.View(list, q), nil
}

func (a *Application) handleListMajors(c *gin.Context) {
	list, err := a.catalogView(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, majorsResponse{Majors: list, Total: len(list)})
}

func (a *Application) handleGetMajor(c *gin.Context) {
	key := major.Key{
		University: strings.TrimSpace(c.Param("university")),
		MajorCode:  strings.TrimSpace(c.Param("majorCode")),
	}
	if key.University == "" || key.MajorCode == "" {
		respondError(c, apperrors.NewValidationError("key", MsgInvalidKey))
		return
	}

	m, err := a.catalog.GetMajor(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *Application) handleExportMajors(c *gin.Context) {
	list, err := a.catalogView(c)
	if err != nil {
		a.metrics.RecordExport("error")
		respondError(c, err)
		return
	}

	// Rendered into memory first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, list); err != nil {
		a.metrics.RecordExport("error")
		respondError(c, apperrors.NewWrapper("export", "write").Wrap(err, "导出失败"))
		return
	}
	a.metrics.RecordExport("ok")

	date := time.Now().Format("20060102")
	c.Header("Content-Disposition", export.ContentDisposition("majors-"+date+".xlsx", "专业列表-"+date+".xlsx"))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (a *Application) handleRecommendPOST(c *gin.Context) {
	var in recommend.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperrors.NewValidationError("body", MsgInvalidRequest))
		return
	}
	a.recommend(c, in)
}

func (a *Application) handleRecommendGET(c *gin.Context) {
	in, err := recommendationQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	a.recommend(c, in)
}

// recommend runs the flow, then narrows and orders the result with the
// refinement parameters using the same predicate and view engine as the
// catalog listing.
func (a *Application) recommend(c *gin.Context, in recommend.Input) {
	q, err := viewQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	refine := refinementFilter(c)

	ctx := c.Request.Context()
	if a.recommender != nil {
		ctx = ctxutil.WithProvider(ctx, a.recommender.Provider().String())
	}

	res, err := a.service.Recommend(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	res.RecommendedMajors = search.View(filter.Apply(res.RecommendedMajors, refine), q)
	c.JSON(http.StatusOK, recommendationResponse{Result: res, Total: len(res.RecommendedMajors)})
}
