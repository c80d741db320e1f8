package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinEdge/internal/domain/models"
	pkgch "FinEdge/pkg/clickhouse"
	applogger "FinEdge/pkg/logger"
	"FinEdge/pkg/util"
)

// CHSignalStore implements SignalStore, PredictionStore and
// ModelMetricsStore on append-only ClickHouse tables. The latest state per
// symbol is resolved at read time with argMax.
type CHSignalStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client) *CHSignalStore {
	return &CHSignalStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSignalStore) SaveSignal(ctx context.Context, sig models.Signal) error {
	breakdown, err := json.Marshal(sig.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	const q = `
        INSERT INTO finedge.signals
        (symbol, created_at, class, edge_score, ml_score, ta_score, sentiment_score, breakdown)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		strings.ToUpper(sig.Symbol), sig.CreatedAt, string(sig.Class),
		sig.EdgeScore, sig.MLScore, sig.TAScore, sig.SentimentScore,
		string(breakdown)); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_signal error",
				applogger.String("symbol", sig.Symbol), applogger.Error(err))
		}
		return fmt.Errorf("save signal: %w", err)
	}
	return nil
}

func (s *CHSignalStore) LatestSignals(ctx context.Context) ([]models.Signal, error) {
	const q = `
        SELECT
            symbol,
            argMax(created_at, created_at)      AS created_at,
            argMax(class, created_at)           AS class,
            argMax(edge_score, created_at)      AS edge_score,
            argMax(ml_score, created_at)        AS ml_score,
            argMax(ta_score, created_at)        AS ta_score,
            argMax(sentiment_score, created_at) AS sentiment_score,
            argMax(breakdown, created_at)       AS breakdown
        FROM finedge.signals
        GROUP BY symbol
        ORDER BY edge_score DESC
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("latest signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func (s *CHSignalStore) SignalHistory(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	const q = `
        SELECT symbol, created_at, class, edge_score, ml_score, ta_score, sentiment_score, breakdown
        FROM finedge.signals
        WHERE symbol = ?
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("signal history: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]models.Signal, error) {
	out := make([]models.Signal, 0, 32)
	for rows.Next() {
		var sig models.Signal
		var class, breakdown string
		if err := rows.Scan(&sig.Symbol, &sig.CreatedAt, &class,
			&sig.EdgeScore, &sig.MLScore, &sig.TAScore, &sig.SentimentScore, &breakdown); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Class = models.SignalClass(class)
		if breakdown != "" {
			if err := json.Unmarshal([]byte(breakdown), &sig.Breakdown); err != nil {
				return nil, fmt.Errorf("unmarshal breakdown: %w", err)
			}
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSignalStore) SavePrediction(ctx context.Context, p models.Prediction) error {
	const q = `
        INSERT INTO finedge.predictions
        (symbol, created_at, pred_date, direction, confidence, change_pct, prob_up, prob_down, family)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, q,
		strings.ToUpper(p.Symbol), created, util.TradingDay(created),
		string(p.Direction), p.Confidence, p.ChangePct, p.ProbUp, p.ProbDown, p.Family); err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

// Accuracy audits past directional predictions against the realized next
// day close. Predictions without a next-day bar are not counted.
func (s *CHSignalStore) Accuracy(ctx context.Context, symbol string) (models.PredictionAccuracy, error) {
	const q = `
        SELECT
            count() AS total,
            countIf(
                (p.direction = 'UP'   AND nxt.close > cur.close) OR
                (p.direction = 'DOWN' AND nxt.close <= cur.close)
            ) AS correct
        FROM finedge.predictions AS p
        INNER JOIN finedge.price_history AS cur
            ON cur.symbol = p.symbol AND cur.date = p.pred_date
        INNER JOIN finedge.price_history AS nxt
            ON nxt.symbol = p.symbol AND nxt.date = addDays(p.pred_date, 1)
        WHERE p.symbol = ? AND p.direction != 'NEUTRAL'
    `
	var acc models.PredictionAccuracy
	if err := s.db.QueryRowContext(ctx, q, strings.ToUpper(symbol)).
		Scan(&acc.Total, &acc.Correct); err != nil {
		return models.PredictionAccuracy{}, fmt.Errorf("prediction accuracy: %w", err)
	}
	if acc.Total > 0 {
		acc.Accuracy = float64(acc.Correct) / float64(acc.Total)
	}
	return acc, nil
}

func (s *CHSignalStore) SaveMetrics(ctx context.Context, m models.ModelMetrics) error {
	features, err := json.Marshal(m.Features)
	if err != nil {
		return fmt.Errorf("marshal feature list: %w", err)
	}

	const q = `
        INSERT INTO finedge.model_metrics
        (symbol, trained_at, accuracy, precision, recall, f1, cv_accuracy, cv_std, samples, features, family)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		strings.ToUpper(m.Symbol), m.TrainedAt, m.Accuracy, m.Precision, m.Recall,
		m.F1, m.CVAccuracy, m.CVStd, uint32(m.Samples), string(features), m.Family); err != nil {
		return fmt.Errorf("save model metrics: %w", err)
	}
	return nil
}

func (s *CHSignalStore) LatestMetrics(ctx context.Context, symbol string) (*models.ModelMetrics, error) {
	const q = `
        SELECT symbol, trained_at, accuracy, precision, recall, f1, cv_accuracy, cv_std, samples, features, family
        FROM finedge.model_metrics
        WHERE symbol = ?
        ORDER BY trained_at DESC
        LIMIT 1
    `
	var m models.ModelMetrics
	var samples uint32
	var features string
	err := s.db.QueryRowContext(ctx, q, strings.ToUpper(symbol)).
		Scan(&m.Symbol, &m.TrainedAt, &m.Accuracy, &m.Precision, &m.Recall,
			&m.F1, &m.CVAccuracy, &m.CVStd, &samples, &features, &m.Family)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest model metrics: %w", err)
	}
	m.Samples = int(samples)
	if features != "" {
		if err := json.Unmarshal([]byte(features), &m.Features); err != nil {
			return nil, fmt.Errorf("unmarshal feature list: %w", err)
		}
	}
	return &m, nil
}
