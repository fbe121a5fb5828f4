package usecase

import (
	"context"
	"fmt"
	"time"

	"OilSim/internal/domain/models"
	drepo "OilSim/internal/domain/repository"
)

// ResultProcessor routes finished-session results to the configured backend.
// The "none" backend keeps the simulator fully standalone.
type ResultProcessor struct {
	pub     drepo.Publisher
	archive drepo.Archive
	metrics drepo.Metrics
	backend string
}

// NewResultProcessor creates a new ResultProcessor instance.
func NewResultProcessor(
	pub drepo.Publisher,
	archive drepo.Archive,
	metrics drepo.Metrics,
	backend string,
) *ResultProcessor {
	return &ResultProcessor{
		pub:     pub,
		archive: archive,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single result to the configured backend.
func (p *ResultProcessor) Process(ctx context.Context, r *models.SessionResult) error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishResult(ctx, r)
	case "clickhouse":
		err = p.archive.StoreResult(ctx, r)
	case "none":
		return nil
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_result")
		return fmt.Errorf("process result: %w", err)
	}

	p.metrics.RecordLatency("process_result", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *ResultProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
