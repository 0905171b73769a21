package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a snapshot of the connection pool. SearchPath shows which
// clinic schema the pool is bound to.
type PoolStats struct {
	SearchPath    string `json:"search_path,omitempty"`
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
	AcquireCount  int64  `json:"acquire_count"`
	EmptyAcquires int64  `json:"empty_acquire_count"`
}

// HealthReport is the body of the /health/db endpoint.
type HealthReport struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Pool   *PoolStats `json:"pool,omitempty"`
}

const pingTimeout = 5 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		SearchPath:    pool.Config().ConnConfig.RuntimeParams["search_path"],
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
		AcquireCount:  stat.AcquireCount(),
		EmptyAcquires: stat.EmptyAcquireCount(),
	}
}

// HealthHandler pings the database and reports pool statistics when stats is non-nil.
func HealthHandler(p Pinger, stats func() *PoolStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		var report HealthReport
		if stats != nil {
			report.Pool = stats()
		}
		code := http.StatusOK
		if err := p.Ping(ctx); err != nil {
			report.Status, report.Error = "unhealthy", err.Error()
			code = http.StatusServiceUnavailable
		} else {
			report.Status = "healthy"
		}
		return c.JSON(code, report)
	}
}

// PoolHealthHandler wires HealthHandler to a pgx pool.
func PoolHealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return HealthHandler(pool, func() *PoolStats { return GetPoolStats(pool) })
}
