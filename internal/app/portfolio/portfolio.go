// Package portfolio is the static knowledge base the informational tools
// query: profile facts, project records, and availability.
package portfolio

import "strings"

type Profile struct {
	Name   string              `json:"name"`
	Title  string              `json:"title"`
	Bio    string              `json:"bio"`
	Skills map[string][]string `json:"skills"`
}

type Project struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	ArchitectureNotes string   `json:"architecture_notes,omitempty"`
}

type Availability struct {
	Status string `json:"status"`
	OpenTo string `json:"open_to"`
}

type JobFit struct {
	Score          string   `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Analysis       string   `json:"analysis"`
}

var profile = Profile{
	Name:  "Mudasir Shah",
	Title: "Full-Stack Developer & AI Specialist",
	Bio: "Started my journey in December 2023 with backend development. Evolved into full-stack development " +
		"with React and Next.js, then advanced to building AI-powered applications using LangChain and LangGraph.",
	Skills: map[string][]string{
		"languages": {"JavaScript (ES6+)", "TypeScript", "Python", "C++", "SQL"},
		"frontend":  {"React", "Next.js", "Tailwind CSS"},
		"backend":   {"Node.js", "NestJS", "FastAPI", "Express"},
		"ai":        {"LangChain", "LangGraph", "RAG"},
	},
}

var projects = []Project{
	{
		Name:              "UptimeGuard",
		Description:       "Decentralized uptime monitoring with crypto-verified validators.",
		Tags:              []string{"React", "Express", "Node.js", "PostgreSQL", "WebSockets", "Prisma"},
		ArchitectureNotes: "Built tracking website status in real-time with historical analytics.",
	},
	{
		Name:              "GoPlanIt",
		Description:       "AI travel itineraries using real-time flight and attraction data.",
		Tags:              []string{"React", "Node.js", "Express", "Gemini API", "Inngest", "MongoDB"},
		ArchitectureNotes: "Delivered tailored recommendations simplifying travel planning. Handled async processing via Inngest.",
	},
	{
		Name:              "Airgpt",
		Description:       "RAG system built for Air University.",
		Tags:              []string{"Next.js", "React", "FastAPI", "Python", "Qdrant", "LangChain"},
		ArchitectureNotes: "Answers user queries by searching and reasoning over ingested documents using a vector database (Qdrant).",
	},
}

var availability = Availability{
	Status: "Currently employed as Web Developer at Out-Secure (Oct 2024 - Present).",
	OpenTo: "Exploring opportunities involving AI infrastructure, advanced backend systems, or lead full-stack roles.",
}

// GetProfile returns basic profile information.
func GetProfile() Profile {
	return profile
}

// ListProjects returns all projects, or only those carrying at least one of
// the given tags. Matching is exact tag equality, case-insensitive.
// Architecture notes are withheld at the listing level.
func ListProjects(filters []string) []Project {
	out := make([]Project, 0, len(projects))

	if len(filters) == 0 {
		for _, p := range projects {
			out = append(out, Project{Name: p.Name, Description: p.Description, Tags: p.Tags})
		}
		return out
	}

	lowered := make([]string, len(filters))
	for i, f := range filters {
		lowered[i] = strings.ToLower(f)
	}

	for _, p := range projects {
		if hasAnyTag(p.Tags, lowered) {
			out = append(out, Project{Name: p.Name, Description: p.Description, Tags: p.Tags})
		}
	}
	return out
}

func hasAnyTag(tags, loweredFilters []string) bool {
	for _, t := range tags {
		lt := strings.ToLower(t)
		for _, f := range loweredFilters {
			if lt == f {
				return true
			}
		}
	}
	return false
}

// ExplainProject returns the deep architectural record for a project by name
// (case-insensitive). The second return reports whether it was found.
func ExplainProject(name string) (Project, bool) {
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}

// GetAvailability returns current working status and preferred roles.
func GetAvailability() Availability {
	return availability
}

// AnalyzeJobFit compares a job description against the profile's skills and
// reports which ones appear in the text. Purely lexical: a skill matches if
// it occurs as a substring, case-insensitive.
func AnalyzeJobFit(jobText string) JobFit {
	lowered := strings.ToLower(jobText)

	var matching, missing []string
	for _, group := range []string{"languages", "frontend", "backend", "ai"} {
		for _, skill := range profile.Skills[group] {
			// "JavaScript (ES6+)" should match on "javascript".
			key := strings.ToLower(skill)
			if i := strings.IndexAny(key, " ("); i > 0 {
				key = key[:i]
			}
			if key != "" && strings.Contains(lowered, key) {
				matching = append(matching, skill)
			} else {
				missing = append(missing, skill)
			}
		}
	}

	score := "Weak Fit"
	switch {
	case len(matching) >= 5:
		score = "Strong Fit"
	case len(matching) >= 2:
		score = "Moderate Fit"
	}

	analysis := "The role shares little overlap with the developer's current stack."
	if len(matching) > 0 {
		analysis = "The developer's experience covers " + strings.Join(matching, ", ") +
			", which aligns with the requirements in the posting."
	}

	return JobFit{
		Score:          score,
		MatchingSkills: matching,
		MissingSkills:  missing,
		Analysis:       analysis,
	}
}
