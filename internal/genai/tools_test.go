package genai

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/zjgaokao/major-advisor/internal/major"
	"google.golang.org/genai"
)

func TestBuildToolDeclaration(t *testing.T) {
	t.Parallel()
	fd := BuildToolDeclaration()
	if fd.Name != "getMajorRecommendations" {
		t.Errorf("Name = %q", fd.Name)
	}
	if fd.Description != ToolDescription {
		t.Errorf("Description = %q", fd.Description)
	}
	if fd.Parameters.Type != genai.TypeObject {
		t.Errorf("Parameters.Type = %v, want OBJECT", fd.Parameters.Type)
	}
	if len(fd.Parameters.Required) != 0 {
		t.Errorf("Required = %v, want no required arguments", fd.Parameters.Required)
	}

	want := []string{"majorCategories", "regions", "schoolingLength", "tuitionRange", "universityTier"}
	var got []string
	for name := range fd.Parameters.Properties {
		got = append(got, name)
	}
	slices.Sort(got)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("properties = %v, want %v", got, want)
	}
	if _, ok := fd.Parameters.Properties["subjects"]; ok {
		t.Error("tool must not take a subject argument")
	}
	if items := fd.Parameters.Properties["regions"].Items; items == nil || !slices.Contains(items.Enum, "北京") {
		t.Error("regions items should enumerate the region vocabulary")
	}
}

func TestBuildOpenAITools(t *testing.T) {
	t.Parallel()
	tools := buildOpenAITools()
	if len(tools) != 1 {
		t.Fatalf("len(tools) = %d, want 1", len(tools))
	}
	fn := tools[0].OfFunction
	if fn == nil {
		t.Fatal("expected a function tool")
	}
	if fn.Function.Name != ToolName {
		t.Errorf("Name = %q", fn.Function.Name)
	}
	params := fn.Function.Parameters
	if params["type"] != "object" {
		t.Errorf("type = %v, want object", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties has type %T", params["properties"])
	}
	regions, ok := props["regions"].(map[string]any)
	if !ok {
		t.Fatal("regions property missing")
	}
	if regions["type"] != "array" {
		t.Errorf("regions type = %v, want lowercase array", regions["type"])
	}
	items, ok := regions["items"].(map[string]any)
	if !ok || items["type"] != "string" {
		t.Errorf("regions items = %v", regions["items"])
	}
}

func TestParseToolArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    map[string]any
		want    major.Filter
		wantErr bool
	}{
		{name: "nil args", args: nil, want: major.Filter{}},
		{
			name: "all fields",
			args: map[string]any{
				"regions":         []any{"北京", " 上海 "},
				"majorCategories": []any{"工学"},
				"schoolingLength": "4年",
				"tuitionRange":    "5000-10000元",
				"universityTier":  "985",
			},
			want: major.Filter{
				Regions:         []string{"北京", "上海"},
				MajorCategories: []string{"工学"},
				SchoolingLength: "4年",
				TuitionRange:    "5000-10000元",
				UniversityTier:  "985",
			},
		},
		{
			name: "comma joined list",
			args: map[string]any{"regions": "北京,浙江"},
			want: major.Filter{Regions: []string{"北京", "浙江"}},
		},
		{
			name: "empty list is no constraint",
			args: map[string]any{"regions": []any{}, "schoolingLength": nil},
			want: major.Filter{},
		},
		{name: "number for string", args: map[string]any{"universityTier": 985.0}, wantErr: true},
		{name: "number in list", args: map[string]any{"regions": []any{"北京", 1.0}}, wantErr: true},
		{name: "object for list", args: map[string]any{"majorCategories": map[string]any{}}, wantErr: true},
		{name: "unknown argument ignored", args: map[string]any{"subjects": []any{"物理"}}, want: major.Filter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseToolArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseToolArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseToolArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunTool(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fixture := []major.Major{{UniversityDetails: major.UniversityDetails{University: "浙江大学", Region: "浙江"}, MajorCode: "080901"}}

	var gotFilter major.Filter
	tool := func(_ context.Context, f major.Filter) ([]major.Major, error) {
		gotFilter = f
		return fixture, nil
	}

	payload, err := runTool(ctx, tool, toolCall{Name: ToolName, Args: map[string]any{"regions": []any{"浙江"}}}, nil)
	if err != nil {
		t.Fatalf("runTool() error = %v", err)
	}
	if payload["count"] != 1 {
		t.Errorf("count = %v, want 1", payload["count"])
	}
	if !reflect.DeepEqual(gotFilter.Regions, []string{"浙江"}) {
		t.Errorf("tool received %+v", gotFilter)
	}

	payload, err = runTool(ctx, tool, toolCall{Name: "somethingElse"}, nil)
	if err != nil || payload["error"] == nil {
		t.Errorf("unknown tool should be reported to the model, got %v, %v", payload, err)
	}

	payload, err = runTool(ctx, tool, toolCall{Name: ToolName, Args: map[string]any{"regions": 3.0}}, nil)
	if err != nil || payload["error"] == nil {
		t.Errorf("bad arguments should be reported to the model, got %v, %v", payload, err)
	}

	empty := func(context.Context, major.Filter) ([]major.Major, error) { return nil, nil }
	payload, err = runTool(ctx, empty, toolCall{Name: ToolName}, nil)
	if err != nil {
		t.Fatalf("runTool() error = %v", err)
	}
	if majors, ok := payload["majors"].([]major.Major); !ok || majors == nil {
		t.Errorf("empty result should be a non-nil slice, got %#v", payload["majors"])
	}

	boom := errors.New("store down")
	failing := func(context.Context, major.Filter) ([]major.Major, error) { return nil, boom }
	if _, err := runTool(ctx, failing, toolCall{Name: ToolName}, nil); !errors.Is(err, boom) {
		t.Errorf("runTool() error = %v, want wrapped store error", err)
	}
}
