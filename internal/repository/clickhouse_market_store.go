package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinEdge/internal/domain/models"
	pkgch "FinEdge/pkg/clickhouse"
	applogger "FinEdge/pkg/logger"
)

// CHMarketStore implements PriceStore and WatchlistStore backed by
// ClickHouse. Price rows replace by (symbol, date); watchlist rows are
// versioned by updated_at with a removal tombstone.
type CHMarketStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client) *CHMarketStore {
	return &CHMarketStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) SaveBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	const row = `(?, ?, ?, ?, ?, ?, ?, ?)`
	const q = `
        INSERT INTO finedge.price_history
        (symbol, date, open, high, low, close, adj_close, volume)
        VALUES `

	placeholders := make([]string, 0, len(bars))
	args := make([]any, 0, len(bars)*8)
	for _, b := range bars {
		placeholders = append(placeholders, row)
		args = append(args,
			strings.ToUpper(b.Symbol), b.Date, b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume)
	}

	if _, err := s.db.ExecContext(ctx, q+strings.Join(placeholders, ","), args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_bars error",
				applogger.Int("rows", len(bars)), applogger.Error(err))
		}
		return fmt.Errorf("save bars: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse save_bars ok",
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)))
	}
	return nil
}

func (s *CHMarketStore) GetSeries(ctx context.Context, symbol string, lookback int) ([]models.PriceBar, error) {
	const q = `
        SELECT symbol, date, open, high, low, close, adj_close, volume
        FROM finedge.price_history FINAL
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(symbol), lookback)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_series query error",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.PriceBar, 0, lookback)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// newest-first query, reversed to the ascending order callers expect
	out := make([]models.PriceBar, len(tmp))
	for i, b := range tmp {
		out[len(tmp)-1-i] = b
	}
	return out, nil
}

func (s *CHMarketStore) LatestBar(ctx context.Context, symbol string) (*models.PriceBar, error) {
	const q = `
        SELECT symbol, date, open, high, low, close, adj_close, volume
        FROM finedge.price_history FINAL
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT 1
    `
	var b models.PriceBar
	err := s.db.QueryRowContext(ctx, q, strings.ToUpper(symbol)).
		Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrNoData, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("latest bar: %w", err)
	}
	return &b, nil
}

func (s *CHMarketStore) List(ctx context.Context) ([]models.WatchlistEntry, error) {
	const q = `
        SELECT symbol, name, asset_type, added_at
        FROM (
            SELECT
                symbol,
                argMax(name, updated_at)       AS name,
                argMax(asset_type, updated_at) AS asset_type,
                argMax(added_at, updated_at)   AS added_at,
                argMax(removed, updated_at)    AS removed
            FROM finedge.watchlist
            GROUP BY symbol
        )
        WHERE removed = 0
        ORDER BY symbol ASC
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	out := make([]models.WatchlistEntry, 0, 16)
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.Symbol, &e.Name, &e.AssetType, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketStore) Add(ctx context.Context, e models.WatchlistEntry) error {
	const q = `
        INSERT INTO finedge.watchlist
        (symbol, name, asset_type, added_at, updated_at, removed)
        VALUES (?, ?, ?, ?, ?, 0)
    `
	added := e.AddedAt
	if added.IsZero() {
		added = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, q,
		strings.ToUpper(e.Symbol), e.Name, e.AssetType, added, time.Now().UTC()); err != nil {
		return fmt.Errorf("add watchlist entry: %w", err)
	}
	return nil
}

func (s *CHMarketStore) Remove(ctx context.Context, symbol string) error {
	const q = `
        INSERT INTO finedge.watchlist
        (symbol, name, asset_type, added_at, updated_at, removed)
        VALUES (?, '', '', ?, ?, 1)
    `
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, q, strings.ToUpper(symbol), now, now); err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	return nil
}
