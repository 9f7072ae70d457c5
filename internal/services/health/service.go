package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service reports process readiness.
type Service struct {
	DB            *sql.DB
	LLMConfigured bool
	Provider      string
}

// NewService constructs a health service. db may be nil when history is kept
// in memory.
func NewService(db *sql.DB, llmConfigured bool, provider string) *Service {
	return &Service{DB: db, LLMConfigured: llmConfigured, Provider: provider}
}

// Status is the health payload.
type Status struct {
	OK            bool   `json:"ok"`
	LLMConfigured bool   `json:"llmConfigured"`
	Provider      string `json:"provider"`
	Storage       string `json:"storage"`
	StorageError  string `json:"storageError,omitempty"`
}

// Status checks the database, if any. A missing credential does not make the
// process unhealthy; analysis requests report it themselves.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, LLMConfigured: s.LLMConfigured, Provider: s.Provider, Storage: "memory"}
	if s.DB == nil {
		return st
	}
	st.Storage = "postgres"
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		st.OK = false
		st.StorageError = err.Error()
	}
	return st
}
