package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/models"
)

var _ ResultsMirror = (*PostgresMirror)(nil)

// PostgresMirror keeps a queryable relational copy of the collected
// matches. The JSON day files stay the source of truth; the mirror only
// serves downstream statistics, so mirror failures are never fatal to a
// scrape run.
type PostgresMirror struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresMirror(cfg *config.PostgresConfig, logger *slog.Logger) (*PostgresMirror, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	m := &PostgresMirror{db: db, logger: logger}
	if err := m.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres mirror initialized")
	return m, nil
}

func (m *PostgresMirror) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS matches (
		match_id VARCHAR(64) PRIMARY KEY,
		country TEXT NOT NULL,
		league TEXT NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		home_scores INTEGER,
		away_scores INTEGER,
		match_date VARCHAR(32) NOT NULL,
		match_time VARCHAR(32) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS odds (
		match_id VARCHAR(64) PRIMARY KEY REFERENCES matches(match_id),
		home_odds DECIMAL(10, 3),
		away_odds DECIMAL(10, 3),
		over_odds DECIMAL(10, 3),
		under_odds DECIMAL(10, 3),
		over_under_total DECIMAL(10, 2)
	);

	CREATE TABLE IF NOT EXISTS h2h_matches (
		id SERIAL PRIMARY KEY,
		match_id VARCHAR(64) NOT NULL REFERENCES matches(match_id),
		h2h_date VARCHAR(32) NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		home_score INTEGER NOT NULL,
		away_score INTEGER NOT NULL,
		competition TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_h2h_matches_match_id ON h2h_matches(match_id);
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// MirrorMatches upserts records into the relational copy. H2H rows are
// replaced wholesale per match so re-mirroring cannot duplicate them.
func (m *PostgresMirror) MirrorMatches(ctx context.Context, records []models.MatchRecord) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO matches (match_id, country, league, home_team, away_team, home_scores, away_scores, match_date, match_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (match_id) DO UPDATE SET
				country = EXCLUDED.country,
				league = EXCLUDED.league,
				home_team = EXCLUDED.home_team,
				away_team = EXCLUDED.away_team,
				match_date = EXCLUDED.match_date,
				match_time = EXCLUDED.match_time`,
			rec.MatchID, rec.Country, rec.League, rec.HomeTeam, rec.AwayTeam,
			nullableInt(rec.HomeScore), nullableInt(rec.AwayScore), rec.Date, rec.Time)
		if err != nil {
			return fmt.Errorf("failed to mirror match %s: %w", rec.MatchID, err)
		}

		if rec.Odds != nil {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO odds (match_id, home_odds, away_odds, over_odds, under_odds, over_under_total)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (match_id) DO UPDATE SET
					home_odds = EXCLUDED.home_odds,
					away_odds = EXCLUDED.away_odds,
					over_odds = EXCLUDED.over_odds,
					under_odds = EXCLUDED.under_odds,
					over_under_total = EXCLUDED.over_under_total`,
				rec.MatchID,
				nullableFloat(rec.Odds.HomeOdds), nullableFloat(rec.Odds.AwayOdds),
				nullableFloat(rec.Odds.OverOdds), nullableFloat(rec.Odds.UnderOdds),
				nullableFloat(rec.Odds.MatchTotal))
			if err != nil {
				return fmt.Errorf("failed to mirror odds for %s: %w", rec.MatchID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM h2h_matches WHERE match_id = $1`, rec.MatchID); err != nil {
			return fmt.Errorf("failed to clear h2h rows for %s: %w", rec.MatchID, err)
		}
		for _, h2h := range rec.H2HMatches {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO h2h_matches (match_id, h2h_date, home_team, away_team, home_score, away_score, competition)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				rec.MatchID, h2h.Date, h2h.HomeTeam, h2h.AwayTeam, h2h.HomeScore, h2h.AwayScore, h2h.Competition)
			if err != nil {
				return fmt.Errorf("failed to mirror h2h row for %s: %w", rec.MatchID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mirror transaction: %w", err)
	}
	m.logger.Info("mirrored matches to postgres", "count", len(records))
	return nil
}

func (m *PostgresMirror) MirrorResult(ctx context.Context, matchID string, homeScore, awayScore int) error {
	res, err := m.db.ExecContext(ctx,
		`UPDATE matches SET home_scores = $1, away_scores = $2 WHERE match_id = $3`,
		homeScore, awayScore, matchID)
	if err != nil {
		return fmt.Errorf("failed to mirror result for %s: %w", matchID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("match %s not present in mirror", matchID)
	}
	return nil
}

func (m *PostgresMirror) Close() error {
	return m.db.Close()
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
