package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/bracketbot/pkg/id"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the loop and CLI reads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordOrder stores o, assigning an ID when it has none.
func (j *SQLite) RecordOrder(o OrderRecord) error {
	if o.ID == "" {
		o.ID = id.At(o.Time)
	}
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, time, symbol, side, volume, stop_loss, take_profit, fill_price, status, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Time.UTC(), o.Symbol, string(o.Side), o.Volume,
		nullFloat(o.StopLoss), nullFloat(o.TakeProfit),
		o.FillPrice, string(o.Status), o.Detail,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, balance, equity)
		VALUES (?, ?, ?)`,
		e.Time.UTC(), e.Balance, e.Equity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
