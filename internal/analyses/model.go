package analyses

import "strings"

// Request is the body of an analyze-resume call.
type Request struct {
	ResumeText      string `json:"resumeText"`
	ScenarioID      string `json:"scenarioId"`
	Prompt          string `json:"prompt"`
	UserFingerprint string `json:"userFingerprint"`
	Filename        string `json:"filename"`
}

func (r Request) missingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"resumeText", r.ResumeText},
		{"scenarioId", r.ScenarioID},
		{"prompt", r.Prompt},
		{"userFingerprint", r.UserFingerprint},
		{"filename", r.Filename},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Result is a validated analysis, or a scenario fallback with the same shape.
type Result struct {
	BiasScore       float64  `json:"bias_score"`
	Feedback        []string `json:"feedback"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Response is the body returned for every analysis that produced a
// displayable result. Success is false when Analysis is a fallback.
type Response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Analysis Result `json:"analysis"`
}

// Level buckets a bias score for display.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// LevelForScore maps a score to Low (<30), Medium (<60) or High.
func LevelForScore(score float64) Level {
	switch {
	case score < 30:
		return LevelLow
	case score < 60:
		return LevelMedium
	default:
		return LevelHigh
	}
}
