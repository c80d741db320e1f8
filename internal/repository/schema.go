package repository

// SchemaStatements are applied in order on startup; every statement is
// idempotent.
var SchemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS finedge`,

	`CREATE TABLE IF NOT EXISTS finedge.price_history (
        symbol     LowCardinality(String),
        date       Date,
        open       Float64,
        high       Float64,
        low        Float64,
        close      Float64,
        adj_close  Float64,
        volume     Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, date)`,

	`CREATE TABLE IF NOT EXISTS finedge.watchlist (
        symbol     LowCardinality(String),
        name       String,
        asset_type LowCardinality(String),
        added_at   DateTime('UTC'),
        updated_at DateTime64(3, 'UTC'),
        removed    UInt8
    ) ENGINE = ReplacingMergeTree(updated_at)
    ORDER BY symbol`,

	`CREATE TABLE IF NOT EXISTS finedge.signals (
        symbol          LowCardinality(String),
        created_at      DateTime64(3, 'UTC'),
        class           LowCardinality(String),
        edge_score      Float64,
        ml_score        Float64,
        ta_score        Float64,
        sentiment_score Float64,
        breakdown       String
    ) ENGINE = MergeTree
    ORDER BY (symbol, created_at)`,

	`CREATE TABLE IF NOT EXISTS finedge.predictions (
        symbol     LowCardinality(String),
        created_at DateTime64(3, 'UTC'),
        pred_date  Date,
        direction  LowCardinality(String),
        confidence Float64,
        change_pct Float64,
        prob_up    Float64,
        prob_down  Float64,
        family     LowCardinality(String)
    ) ENGINE = MergeTree
    ORDER BY (symbol, created_at)`,

	`CREATE TABLE IF NOT EXISTS finedge.model_metrics (
        symbol      LowCardinality(String),
        trained_at  DateTime64(3, 'UTC'),
        accuracy    Float64,
        precision   Float64,
        recall      Float64,
        f1          Float64,
        cv_accuracy Float64,
        cv_std      Float64,
        samples     UInt32,
        features    String,
        family      LowCardinality(String)
    ) ENGINE = MergeTree
    ORDER BY (symbol, trained_at)`,
}
