package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Database     string        `yaml:"database"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Secure       bool          `yaml:"secure"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnTimeout  time.Duration `yaml:"conn_timeout"`
}

// ClickHouseHandHistory implements HandHistoryRepository against
// ClickHouse, for append-mostly analytical queries over millions of
// completed hands that would be wasteful to run against the
// transactional Postgres store.
type ClickHouseHandHistory struct {
	db clickhouse.Conn
}

// NewClickHouseHandHistory opens a ClickHouse connection and verifies it
// with a ping.
func NewClickHouseHandHistory(ctx context.Context, config ClickHouseConfig) (*ClickHouseHandHistory, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", config.Host, config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		TLS: &tls.Config{InsecureSkipVerify: config.Secure},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return &ClickHouseHandHistory{db: conn}, nil
}

// CreateTables creates the hand_history table if it doesn't exist.
func (ch *ClickHouseHandHistory) CreateTables(ctx context.Context) error {
	return ch.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS hand_history (
			event_id String,
			hand_number Int32,
			table_id String,
			player_id String,
			payout Int64,
			uncontested Bool,
			hand_category String,
			num_players Int32,
			timestamp DateTime64(3)
		) ENGINE = ReplacingMergeTree(timestamp)
		ORDER BY (table_id, hand_number, player_id)`)
}

// RecordHand inserts one row per player payout from a completed hand.
func (ch *ClickHouseHandHistory) RecordHand(ctx context.Context, events []HandHistoryEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch, err := ch.db.PrepareBatch(ctx, `
		INSERT INTO hand_history (
			event_id, hand_number, table_id, player_id, payout,
			uncontested, hand_category, num_players, timestamp
		)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, e := range events {
		if err := batch.Append(
			e.EventID, e.HandNumber, e.TableID, e.PlayerID, e.Payout,
			e.Uncontested, e.HandCategory, e.NumPlayers, e.Timestamp,
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return batch.Send()
}

// Query retrieves hand history rows matching q.
func (ch *ClickHouseHandHistory) Query(ctx context.Context, q HandHistoryQuery) ([]HandHistoryEvent, error) {
	sql := `
		SELECT event_id, hand_number, table_id, player_id, payout,
		       uncontested, hand_category, num_players, timestamp
		FROM hand_history
		WHERE 1 = 1
	`
	var args []interface{}
	if q.TableID != "" {
		sql += " AND table_id = ?"
		args = append(args, q.TableID)
	}
	if q.PlayerID != "" {
		sql += " AND player_id = ?"
		args = append(args, q.PlayerID)
	}
	if !q.StartTime.IsZero() {
		sql += " AND timestamp >= ?"
		args = append(args, q.StartTime)
	}
	if !q.EndTime.IsZero() {
		sql += " AND timestamp <= ?"
		args = append(args, q.EndTime)
	}
	sql += " ORDER BY timestamp DESC"
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := ch.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query hand history: %w", err)
	}
	defer rows.Close()

	var out []HandHistoryEvent
	for rows.Next() {
		var e HandHistoryEvent
		if err := rows.Scan(
			&e.EventID, &e.HandNumber, &e.TableID, &e.PlayerID, &e.Payout,
			&e.Uncontested, &e.HandCategory, &e.NumPlayers, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
