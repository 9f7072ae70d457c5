package scenarios

import (
	"embed"
	"errors"
	"path"
	"strings"
)

//go:embed demo/*.txt
var demoFiles embed.FS

// ErrDemoNotFound is returned for a scenario or variant without a demo resume.
var ErrDemoNotFound = errors.New("demo resume not found")

// DemoResume is a demo resume variant with its text.
type DemoResume struct {
	Variant string `json:"variant"`
	Label   string `json:"label"`
	Text    string `json:"text"`
}

// DemoResumes returns the demo resumes declared for the scenario, in catalog order.
func (s Spec) DemoResumes() ([]DemoResume, error) {
	out := make([]DemoResume, 0, len(s.Demos))
	for _, d := range s.Demos {
		text, err := demoFiles.ReadFile(path.Join("demo", d.File))
		if err != nil {
			return nil, err
		}
		out = append(out, DemoResume{Variant: d.Variant, Label: d.Label, Text: string(text)})
	}
	return out, nil
}

// DemoResume returns one variant, matched case-insensitively.
func (s Spec) DemoResume(variant string) (DemoResume, error) {
	demos, err := s.DemoResumes()
	if err != nil {
		return DemoResume{}, err
	}
	for _, d := range demos {
		if strings.EqualFold(d.Variant, strings.TrimSpace(variant)) {
			return d, nil
		}
	}
	return DemoResume{}, ErrDemoNotFound
}
