//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUser     = "clinic"
	pgPassword = "clinic"
	pgDatabase = "clinictest"
)

// pgImage is the postgres image started when no database URL is given.
func pgImage() string {
	if img := os.Getenv("CLINIC_TEST_PG_IMAGE"); img != "" {
		return img
	}
	return "postgres:16-alpine"
}

// startPostgres runs a throwaway postgres container through the Docker CLI,
// lets docker pick the host port, and returns a connection string and cleanup.
func startPostgres(ctx context.Context) (string, func(), error) {
	name := "clinic-it-" + uuid.NewString()[:8]
	out, err := docker(ctx, "run", "-d", "--rm", "--name", name,
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER="+pgUser,
		"-e", "POSTGRES_PASSWORD="+pgPassword,
		"-e", "POSTGRES_DB="+pgDatabase,
		pgImage(),
	)
	if err != nil {
		return "", nil, err
	}
	id := strings.TrimSpace(out)
	cleanup := func() { _, _ = docker(context.Background(), "rm", "-f", id) }

	// "docker port" prints lines like 127.0.0.1:49153.
	out, err = docker(ctx, "port", id, "5432/tcp")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	hostPort := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])

	url := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, hostPort, pgDatabase)
	if err := waitForPostgres(ctx, url, 30*time.Second); err != nil {
		cleanup()
		return "", nil, err
	}
	return url, cleanup, nil
}

func docker(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w: %s", args[0], err, out)
	}
	return string(out), nil
}

// waitForPostgres pings url until it answers or the timeout passes.
func waitForPostgres(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	var lastErr error
	for {
		if lastErr = ping(ctx, url); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready after %v: %w", timeout, lastErr)
		case <-tick.C:
		}
	}
}

func ping(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()
	return pool.Ping(ctx)
}
