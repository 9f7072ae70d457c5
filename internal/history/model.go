package history

import (
	"time"

	"biasbuster-backend/internal/analyses"
)

// Entry is one stored analysis result for an anonymous client.
type Entry struct {
	ID              string          `json:"id"`
	FingerprintHash string          `json:"-"`
	ScenarioID      string          `json:"scenarioId"`
	Filename        string          `json:"filename"`
	Analysis        analyses.Result `json:"analysis"`
	Level           analyses.Level  `json:"level"`
	Fallback        bool            `json:"fallback"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RecordInput is the body of a history write.
type RecordInput struct {
	ScenarioID string          `json:"scenarioId"`
	Filename   string          `json:"filename"`
	Analysis   analyses.Result `json:"analysis"`
	Fallback   bool            `json:"fallback"`
}

// ListFilter narrows a history listing. An empty ScenarioID matches all.
type ListFilter struct {
	ScenarioID string
	Limit      int
	Offset     int
}
