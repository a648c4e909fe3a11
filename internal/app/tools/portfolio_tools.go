package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mudasirshah/portfolio-agent/internal/app/portfolio"
)

// Informational tool names. The informational mode binds exactly this set.
const (
	ToolGetProfile      = "get_profile"
	ToolListProjects    = "list_projects"
	ToolExplainProject  = "explain_project"
	ToolGetAvailability = "get_availability"
	ToolAnalyzeJobFit   = "analyze_job_fit"
)

// InformationalToolNames returns the informational capability subset in
// registration order.
func InformationalToolNames() []string {
	return []string{
		ToolGetProfile,
		ToolListProjects,
		ToolExplainProject,
		ToolGetAvailability,
		ToolAnalyzeJobFit,
	}
}

// RegisterPortfolioTools adds the informational capability set to the registry.
func RegisterPortfolioTools(r *Registry) {
	r.Register(&getProfileTool{})
	r.Register(&listProjectsTool{})
	r.Register(&explainProjectTool{})
	r.Register(&getAvailabilityTool{})
	r.Register(&analyzeJobFitTool{})
}

func marshalResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(raw), nil
}

// ── get_profile ──────────────────────────────────────────────

type getProfileArgs struct{}

type getProfileTool struct{}

func (t *getProfileTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        ToolGetProfile,
		Description: "Retrieves basic profile information, bio, and general experience.",
		InputSchema: SchemaFor(&getProfileArgs{}),
	}
}

func (t *getProfileTool) Call(_ context.Context, _ ToolContext, _ map[string]any) (string, error) {
	return marshalResult(portfolio.GetProfile())
}

// ── list_projects ────────────────────────────────────────────

type listProjectsArgs struct {
	Filters []string `json:"filters,omitempty" jsonschema:"description=A list of technical tags to filter projects by (e.g. ['React', 'Python']). Omit to list everything."`
}

type listProjectsTool struct{}

func (t *listProjectsTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        ToolListProjects,
		Description: "Searches the portfolio for projects matching optional technology filters.",
		InputSchema: SchemaFor(&listProjectsArgs{}),
	}
}

func (t *listProjectsTool) Call(_ context.Context, _ ToolContext, input map[string]any) (string, error) {
	var filters []string
	if raw, ok := input["filters"].([]any); ok {
		for _, f := range raw {
			if s, ok := f.(string); ok {
				filters = append(filters, s)
			}
		}
	}
	if raw, ok := input["filters"].([]string); ok {
		filters = append(filters, raw...)
	}
	return marshalResult(portfolio.ListProjects(filters))
}

// ── explain_project ──────────────────────────────────────────

type explainProjectArgs struct {
	Name string `json:"name" jsonschema:"description=The exact name of the project to explain (e.g. 'UptimeGuard', 'GoPlanIt')"`
}

type explainProjectTool struct{}

func (t *explainProjectTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        ToolExplainProject,
		Description: "Retrieves in-depth technical details, architecture, and reasoning for a specific project.",
		InputSchema: SchemaFor(&explainProjectArgs{}),
	}
}

func (t *explainProjectTool) Call(_ context.Context, _ ToolContext, input map[string]any) (string, error) {
	name, _ := input["name"].(string)
	project, ok := portfolio.ExplainProject(name)
	if !ok {
		// Not-found is a conversational outcome, not a fault.
		return marshalResult(map[string]string{
			"error": fmt.Sprintf("Project %q not found in portfolio.", name),
		})
	}
	return marshalResult(project)
}

// ── get_availability ─────────────────────────────────────────

type getAvailabilityArgs struct{}

type getAvailabilityTool struct{}

func (t *getAvailabilityTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        ToolGetAvailability,
		Description: "Retrieves the developer's current focus, employment status, and availability for roles.",
		InputSchema: SchemaFor(&getAvailabilityArgs{}),
	}
}

func (t *getAvailabilityTool) Call(_ context.Context, _ ToolContext, _ map[string]any) (string, error) {
	return marshalResult(portfolio.GetAvailability())
}

// ── analyze_job_fit ──────────────────────────────────────────

type analyzeJobFitArgs struct {
	JobText string `json:"job_text" jsonschema:"description=The raw text of the job description or role requirements"`
}

type analyzeJobFitTool struct{}

func (t *analyzeJobFitTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        ToolAnalyzeJobFit,
		Description: "Analyzes a job description to determine how well it matches the developer's skills and experience.",
		InputSchema: SchemaFor(&analyzeJobFitArgs{}),
	}
}

func (t *analyzeJobFitTool) Call(_ context.Context, _ ToolContext, input map[string]any) (string, error) {
	jobText, _ := input["job_text"].(string)
	return marshalResult(portfolio.AnalyzeJobFit(jobText))
}
