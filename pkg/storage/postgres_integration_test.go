//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/collector"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a Postgres container and returns its DSN.
func setupPostgres(t *testing.T) (string, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "hh",
			"POSTGRES_PASSWORD": "hh",
			"POSTGRES_DB":       "hh",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://hh:hh@%s:%s/hh?sslmode=disable", host, port.Port())
	cleanup := func() {
		container.Terminate(ctx)
	}

	return dsn, cleanup
}

func TestPostgresWriter_WriteRun(t *testing.T) {
	dsn, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	writer, err := NewPostgresWriter(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresWriter() error = %v", err)
	}
	defer writer.Close()

	if err := writer.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	// Idempotent.
	if err := writer.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema() error = %v", err)
	}

	from, currency := 120000.0, "RUR"
	run := &collector.Run{
		ID: uuid.New(),
		Rows: []collector.Row{
			{ID: "1", Name: "Data Scientist", SalaryFrom: &from, Currency: &currency, Query: "data science",
				StartedAt: "2024-05-01 10:00:00", FinishedAt: "2024-05-01 10:03:00", PageDuration: "2.00 сек"},
			{ID: "2", Name: "Аналитик", Query: "аналитик данных",
				StartedAt: "2024-05-01 10:03:00", FinishedAt: "2024-05-01 10:05:00", PageDuration: "1.50 сек"},
			// Same vacancy under another query is kept.
			{ID: "1", Name: "Data Scientist", Query: "machine learning engineer",
				StartedAt: "2024-05-01 10:05:00", FinishedAt: "2024-05-01 10:06:00", PageDuration: "0.90 сек"},
		},
	}

	n, err := writer.WriteRun(ctx, run)
	if err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	if n != 3 {
		t.Errorf("WriteRun() = %d, want 3", n)
	}

	stored, err := writer.CountRun(ctx, run)
	if err != nil {
		t.Fatalf("CountRun() error = %v", err)
	}
	if stored != 3 {
		t.Errorf("stored rows = %d, want 3", stored)
	}

	var salaryTo *float64
	err = writer.pool.QueryRow(ctx,
		"SELECT salary_to FROM hh_vacancies WHERE run_id = $1 AND query = $2", run.ID, "data science").Scan(&salaryTo)
	if err != nil {
		t.Fatalf("query salary_to: %v", err)
	}
	if salaryTo != nil {
		t.Errorf("salary_to = %v, want NULL", *salaryTo)
	}

	empty := &collector.Run{ID: uuid.New()}
	if n, err := writer.WriteRun(ctx, empty); err != nil || n != 0 {
		t.Errorf("WriteRun(empty) = %d, %v", n, err)
	}
}

func TestNewPostgresWriter_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewPostgresWriter(ctx, "postgres://hh:hh@127.0.0.1:1/hh?sslmode=disable"); err == nil {
		t.Fatal("expected connection error")
	}
}
