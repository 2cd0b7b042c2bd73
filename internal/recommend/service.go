package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/filter"
	"github.com/zjgaokao/major-advisor/internal/genai"
	"github.com/zjgaokao/major-advisor/internal/major"
	"github.com/zjgaokao/major-advisor/internal/metrics"
	"github.com/zjgaokao/major-advisor/internal/subject"
	"golang.org/x/sync/semaphore"
)

// Source tells which path produced a result.
type Source string

const (
	SourceLLM     Source = "llm"
	SourceCatalog Source = "catalog"
)

// CatalogReasoning explains a result produced without the model.
const CatalogReasoning = "以下是根据您在上一页输入的意向筛选出的专业列表。您可以使用下方的筛选栏进一步精确查找。"

// Subject filter stages for metrics.
const (
	stageTool    = "tool"
	stageFinal   = "final"
	stageCatalog = "catalog"
)

// Catalog is the read side of the admission record store.
type Catalog interface {
	ListMajors(ctx context.Context, f major.Filter) ([]major.Major, error)
	GetMajor(ctx context.Context, key major.Key) (*major.Major, error)
}

// Result is a recommendation. Both paths produce the same shape.
type Result struct {
	RecommendedMajors []major.Major `json:"recommendedMajors"`
	Reasoning         string        `json:"reasoning"`
	Source            Source        `json:"source"`
	Provider          string        `json:"provider,omitempty"`
	Model             string        `json:"model,omitempty"`
}

// Options tunes the service.
type Options struct {
	// Timeout bounds one LLM flow; zero means no extra deadline.
	Timeout time.Duration
	// MaxConcurrent caps LLM flows in flight; waiting callers queue.
	MaxConcurrent int64
	Metrics       *metrics.Metrics
}

// Service runs recommendations.
type Service struct {
	catalog     Catalog
	recommender genai.Recommender
	sem         *semaphore.Weighted
	timeout     time.Duration
	metrics     *metrics.Metrics
}

// NewService creates a Service. A nil recommender selects the catalog path.
func NewService(catalog Catalog, recommender genai.Recommender, opts Options) *Service {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	return &Service{
		catalog:     catalog,
		recommender: recommender,
		sem:         semaphore.NewWeighted(limit),
		timeout:     opts.Timeout,
		metrics:     opts.Metrics,
	}
}

// LLMEnabled reports whether recommendations go through the model.
func (s *Service) LLMEnabled() bool {
	return s.recommender != nil
}

// Recommend validates in and produces a recommendation. Without a model the
// coarse catalog filter is returned with a fixed explanation. With a model
// there is no fallback: any failure is returned to the caller.
func (s *Service) Recommend(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	source := SourceCatalog
	if s.recommender != nil {
		source = SourceLLM
	}

	in.Normalize()
	var (
		result *Result
		err    error
	)
	if err = in.Validate(); err == nil {
		if source == SourceLLM {
			result, err = s.recommendWithModel(ctx, in)
		} else {
			result, err = s.recommendFromCatalog(ctx, in)
		}
	}

	duration := time.Since(start)
	s.metrics.RecordRecommendation(string(source), apperrors.Kind(err), duration.Seconds())
	if err != nil {
		slog.WarnContext(ctx, "recommendation failed",
			"source", source,
			"error_kind", apperrors.Kind(err),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "recommendation completed",
		"source", source,
		"majors", len(result.RecommendedMajors),
		"duration_ms", duration.Milliseconds())
	return result, nil
}

func (s *Service) recommendFromCatalog(ctx context.Context, in Input) (*Result, error) {
	list, err := s.catalog.ListMajors(ctx, in.CoarseFilter())
	if err != nil {
		return nil, apperrors.NewWrapper("recommend", "list_majors").Wrap(err, "读取专业数据失败")
	}
	list = s.admissible(list, in, stageCatalog)
	return &Result{
		RecommendedMajors: list,
		Reasoning:         CatalogReasoning,
		Source:            SourceCatalog,
	}, nil
}

func (s *Service) recommendWithModel(ctx context.Context, in Input) (*Result, error) {
	wrapper := apperrors.NewWrapper("recommend", "generate")

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, wrapper.Wrap(apperrors.NewUpstreamError(s.recommender.Provider().String(), s.recommender.Model(), err), "AI 推荐服务繁忙，请稍后重试")
	}
	defer s.sem.Release(1)

	tool := func(ctx context.Context, f major.Filter) ([]major.Major, error) {
		list, err := s.catalog.ListMajors(ctx, f)
		if err != nil {
			return nil, err
		}
		return s.admissible(list, in, stageTool), nil
	}

	out, err := s.recommender.Recommend(ctx, in.request(), tool)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, wrapper.Wrap(err, "AI 推荐超时，请稍后重试")
		case errors.Is(err, apperrors.ErrSchemaViolation):
			return nil, wrapper.Wrap(err, "AI 返回的推荐结果格式无效")
		case errors.Is(err, apperrors.ErrUpstream):
			return nil, wrapper.Wrap(err, "AI 推荐服务调用失败")
		default:
			return nil, wrapper.Wrap(err, "生成推荐失败")
		}
	}

	majors, err := s.canonicalize(ctx, out.RecommendedMajors)
	if err != nil {
		return nil, wrapper.Wrap(err, "读取专业数据失败")
	}
	majors = s.admissible(majors, in, stageFinal)

	slog.DebugContext(ctx, "model answer accepted",
		"provider", s.recommender.Provider(),
		"rounds", out.Rounds,
		"tool_calls", out.ToolCalls,
		"returned", len(out.RecommendedMajors),
		"kept", len(majors))

	return &Result{
		RecommendedMajors: majors,
		Reasoning:         out.Reasoning,
		Source:            SourceLLM,
		Provider:          s.recommender.Provider().String(),
		Model:             s.recommender.Model(),
	}, nil
}

// canonicalize replaces majors the store knows with the stored record so
// the model cannot alter historical numbers, and drops repeated keys.
// Unknown keys are kept as the model returned them.
func (s *Service) canonicalize(ctx context.Context, list []major.Major) ([]major.Major, error) {
	seen := make(map[major.Key]struct{}, len(list))
	out := make([]major.Major, 0, len(list))
	for _, m := range list {
		key := m.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		stored, err := s.catalog.GetMajor(ctx, key)
		switch {
		case err == nil:
			out = append(out, *stored)
		case errors.Is(err, apperrors.ErrNotFound):
			slog.WarnContext(ctx, "model recommended a major missing from the catalog", "key", key.String())
			out = append(out, m)
		default:
			return nil, fmt.Errorf("look up %s: %w", key, err)
		}
	}
	return out, nil
}

// admissible removes excluded records and records whose subject
// requirements the student cannot meet.
func (s *Service) admissible(list []major.Major, in Input, stage string) []major.Major {
	list = filter.Exclude(list, in.Exclusion())
	kept, dropped := subject.Keep(list, in.Subjects)
	s.metrics.RecordSubjectFiltered(stage, dropped)
	return kept
}
