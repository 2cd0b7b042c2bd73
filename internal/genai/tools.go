package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/zjgaokao/major-advisor/internal/major"
	"github.com/zjgaokao/major-advisor/internal/metrics"
	"google.golang.org/genai"
)

// ToolName is the only tool offered to the model.
const ToolName = "getMajorRecommendations"

// ToolDescription tells the model what the tool returns.
const ToolDescription = "根据地区、专业类别、学制、学费、院校层次等筛选条件，获取专业录取信息（包括选科要求）。"

// Tool argument names.
const (
	argRegions         = "regions"
	argMajorCategories = "majorCategories"
	argSchoolingLength = "schoolingLength"
	argTuitionRange    = "tuitionRange"
	argUniversityTier  = "universityTier"
)

// BuildToolDeclaration returns the getMajorRecommendations declaration.
// Every argument is optional. There is deliberately no subject argument:
// the model checks subject requirements itself.
func BuildToolDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        ToolName,
		Description: ToolDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				argRegions: {
					Type:        genai.TypeArray,
					Description: "意向地区列表，用于筛选大学所在地区。",
					Items:       &genai.Schema{Type: genai.TypeString, Enum: major.Regions},
				},
				argMajorCategories: {
					Type:        genai.TypeArray,
					Description: "意向专业类别列表，用于筛选专业所属大类。",
					Items:       &genai.Schema{Type: genai.TypeString, Enum: major.Categories},
				},
				argSchoolingLength: {
					Type:        genai.TypeString,
					Description: `学制要求，例如 "4年" 或 "5年"。如果不需要特定学制，请勿指定。`,
					Enum:        major.SchoolingLengths,
				},
				argTuitionRange: {
					Type:        genai.TypeString,
					Description: `学费范围，例如 "5000-10000元"。如果不需要特定学费范围，请勿指定。`,
					Enum:        major.TuitionRanges,
				},
				argUniversityTier: {
					Type:        genai.TypeString,
					Description: `院校层次要求，例如 "985", "211"。如果不需要特定层次，请勿指定。`,
					Enum:        major.UniversityTiers,
				},
			},
		},
	}
}

// buildOpenAITools converts the declaration to OpenAI v3 tool format.
// OpenAI uses lowercase JSON Schema types.
func buildOpenAITools() []openai.ChatCompletionToolUnionParam {
	fd := BuildToolDeclaration()
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        fd.Name,
			Description: openai.String(fd.Description),
			Parameters:  openai.FunctionParameters(jsonSchema(fd.Parameters)),
		}),
	}
}

// jsonSchema renders a genai schema as a JSON Schema object.
func jsonSchema(s *genai.Schema) map[string]any {
	out := map[string]any{"type": strings.ToLower(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = jsonSchema(s.Items)
	}
	if s.Type == genai.TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = jsonSchema(p)
		}
		out["properties"] = props
		required := s.Required
		if required == nil {
			required = []string{}
		}
		out["required"] = required
	}
	return out
}

// ParseToolArgs converts model-supplied arguments to a filter. Models
// sometimes send a comma-joined string where an array is declared; that is
// accepted. Unknown arguments are ignored.
func ParseToolArgs(args map[string]any) (major.Filter, error) {
	var f major.Filter
	var err error
	if f.Regions, err = stringList(args, argRegions); err != nil {
		return major.Filter{}, err
	}
	if f.MajorCategories, err = stringList(args, argMajorCategories); err != nil {
		return major.Filter{}, err
	}
	if f.SchoolingLength, err = stringArg(args, argSchoolingLength); err != nil {
		return major.Filter{}, err
	}
	if f.TuitionRange, err = stringArg(args, argTuitionRange); err != nil {
		return major.Filter{}, err
	}
	if f.UniversityTier, err = stringArg(args, argUniversityTier); err != nil {
		return major.Filter{}, err
	}
	return f, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q is not a string (got %T)", key, v)
	}
	return strings.TrimSpace(s), nil
}

func stringList(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q has a non-string element (got %T)", key, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("parameter %q is not a list (got %T)", key, v)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// toolCall is a provider-neutral view of one requested call.
type toolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// runTool executes call and returns the response payload for the model.
// Bad arguments and unknown tool names are reported back to the model so
// it can correct itself; a failing ToolFunc aborts the flow.
func runTool(ctx context.Context, tool ToolFunc, call toolCall, m *metrics.Metrics) (map[string]any, error) {
	if call.Name != ToolName {
		m.RecordToolCall(call.Name, "unknown_tool", 0)
		slog.WarnContext(ctx, "model called unknown tool", "tool", call.Name)
		return map[string]any{"error": fmt.Sprintf("unknown tool %q; only %s is available", call.Name, ToolName)}, nil
	}

	f, err := ParseToolArgs(call.Args)
	if err != nil {
		m.RecordToolCall(call.Name, "bad_arguments", 0)
		slog.WarnContext(ctx, "invalid tool arguments", "tool", call.Name, "error", err)
		return map[string]any{"error": err.Error()}, nil
	}

	majors, err := tool(ctx, f)
	if err != nil {
		m.RecordToolCall(call.Name, "error", 0)
		return nil, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	m.RecordToolCall(call.Name, "ok", len(majors))
	if majors == nil {
		majors = []major.Major{}
	}

	slog.DebugContext(ctx, "tool call served",
		"tool", call.Name,
		"regions", f.Regions,
		"major_categories", f.MajorCategories,
		"records", len(majors))

	return map[string]any{"majors": majors, "count": len(majors)}, nil
}
