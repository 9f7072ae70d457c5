package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"biasbuster-backend/internal/analyses"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/shared/util"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// InputError reports an invalid history write.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Reason
}

// Service records and lists analysis history per client fingerprint.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// Record stores an analysis the client received.
func (s *Service) Record(ctx context.Context, fingerprint string, in RecordInput) (Entry, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return Entry{}, ErrFingerprintRequired
	}
	if strings.TrimSpace(in.ScenarioID) == "" {
		return Entry{}, &InputError{Field: "scenarioId", Reason: "required"}
	}
	if len(in.Analysis.Feedback) == 0 {
		return Entry{}, &InputError{Field: "analysis.feedback", Reason: "required"}
	}
	filename, err := util.SanitizeFileName(in.Filename)
	if err != nil {
		return Entry{}, &InputError{Field: "filename", Reason: err.Error()}
	}

	entry := Entry{
		ID:              uuid.NewString(),
		FingerprintHash: util.HashFingerprint(fingerprint),
		ScenarioID:      scenarios.Parse(in.ScenarioID).String(),
		Filename:        filename,
		Analysis:        in.Analysis,
		Level:           analyses.LevelForScore(in.Analysis.BiasScore),
		Fallback:        in.Fallback,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("store history: %w", err)
	}
	return entry, nil
}

// List returns the client's history newest first. Limit is clamped to 1..100.
func (s *Service) List(ctx context.Context, fingerprint string, filter ListFilter) ([]Entry, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, ErrFingerprintRequired
	}
	if filter.ScenarioID != "" {
		id := scenarios.Parse(filter.ScenarioID)
		if id == scenarios.Unknown && !strings.EqualFold(strings.TrimSpace(filter.ScenarioID), id.String()) {
			return nil, &InputError{Field: "scenario", Reason: "unknown scenario"}
		}
		filter.ScenarioID = id.String()
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	entries, err := s.Repo.ListByFingerprint(ctx, util.HashFingerprint(fingerprint), filter)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	for i := range entries {
		entries[i].Level = analyses.LevelForScore(entries[i].Analysis.BiasScore)
	}
	return entries, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
