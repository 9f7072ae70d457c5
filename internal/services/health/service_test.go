package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusMemory(t *testing.T) {
	st := NewService(nil, false, "openai").Status(context.Background())
	if !st.OK || st.Storage != "memory" || st.LLMConfigured {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStatusPostgresPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	st := NewService(db, true, "anthropic").Status(context.Background())
	if !st.OK || st.Storage != "postgres" {
		t.Fatalf("unexpected status %+v", st)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	st = NewService(db, true, "anthropic").Status(context.Background())
	if st.OK || st.StorageError == "" {
		t.Fatalf("expected failed ping to mark status unhealthy, got %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
