package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"OilSim/internal/domain/models"
	"OilSim/internal/domain/repository"
)

// ClickHouseArchive implements Archive for ClickHouse. One row per finished
// session; the trade log travels as a JSON blob next to the flat score
// columns so the analytics side can reconstruct any session.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates ClickHouse archive.
func NewClickHouseArchive(db *sql.DB, table string) repository.Archive {
	return &ClickHouseArchive{db: db, table: table}
}

func (s *ClickHouseArchive) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    finished_at     DateTime,
    session_id      String,
    player          String,
    scenario        String,
    composite_score UInt8,
    grade           String,
    understanding   UInt8,
    execution       UInt8,
    organisation    UInt8,
    interpersonal   UInt8,
    strategic       UInt8,
    analytical      UInt8,
    total_pnl       Float64,
    win_rate        Float64,
    trade_count     UInt32,
    max_drawdown    Float64,
    var_breaches    UInt32,
    trades_json     String
) ENGINE = MergeTree()
ORDER BY (scenario, finished_at)`, s.table)

	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("archive init: %w", err)
	}
	return nil
}

func (s *ClickHouseArchive) StoreResult(ctx context.Context, r *models.SessionResult) error {
	trades, err := json.Marshal(r.Trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s (
    finished_at, session_id, player, scenario,
    composite_score, grade,
    understanding, execution, organisation, interpersonal, strategic, analytical,
    total_pnl, win_rate, trade_count, max_drawdown, var_breaches, trades_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	d := r.Report.Dimensions
	_, err = s.db.ExecContext(ctx, q,
		time.Unix(r.FinishedAt, 0),
		r.SessionID,
		r.Player,
		r.Scenario,
		r.Report.CompositeScore,
		r.Report.Grade,
		d.Understanding, d.Execution, d.Organisation, d.Interpersonal, d.Strategic, d.Analytical,
		r.Report.TotalPnL,
		r.Report.WinRate,
		r.Report.TradeCount,
		r.Report.MaxDrawdown,
		r.Report.VarBreaches,
		string(trades),
	)
	if err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

func (s *ClickHouseArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseArchive) Close() error {
	return nil // Managed by pkg
}
