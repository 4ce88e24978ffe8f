package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/bracketbot/market"
)

const orderColumns = `order_id, time, symbol, side, volume, stop_loss, take_profit, fill_price, status, detail`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (OrderRecord, error) {
	var (
		rec    OrderRecord
		side   string
		status string
		sl, tp sql.NullFloat64
	)
	err := s.Scan(
		&rec.ID,
		&rec.Time,
		&rec.Symbol,
		&side,
		&rec.Volume,
		&sl,
		&tp,
		&rec.FillPrice,
		&status,
		&rec.Detail,
	)
	if err != nil {
		return OrderRecord{}, err
	}
	rec.Side = market.Side(side)
	rec.Status = OrderStatus(status)
	rec.StopLoss = floatPtr(sl)
	rec.TakeProfit = floatPtr(tp)
	return rec, nil
}

// GetOrder returns a single order record by ID.
func (j *SQLite) GetOrder(orderID string) (OrderRecord, error) {
	row := j.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)

	rec, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderRecord{}, fmt.Errorf("order %q: %w", orderID, ErrNotFound)
		}
		return OrderRecord{}, err
	}
	return rec, nil
}

// ListOrdersBetween returns orders whose time is within [start, end).
func (j *SQLite) ListOrdersBetween(start, end time.Time) ([]OrderRecord, error) {
	rows, err := j.db.Query(`SELECT `+orderColumns+` FROM orders
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, order_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`SELECT time, balance, equity FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Balance, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary counts filled and failed orders.
type Summary struct {
	Filled int
	Failed int
	Buys   int
	Sells  int
}

func Summarize(orders []OrderRecord) Summary {
	var s Summary
	for _, o := range orders {
		switch o.Status {
		case StatusFilled:
			s.Filled++
			if o.Side == market.Buy {
				s.Buys++
			} else {
				s.Sells++
			}
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
