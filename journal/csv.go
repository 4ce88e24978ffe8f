package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rustyeddy/bracketbot/pkg/id"
)

var (
	orderHeader  = []string{"order_id", "time", "symbol", "side", "volume", "stop_loss", "take_profit", "fill_price", "status", "detail"}
	equityHeader = []string{"time", "balance", "equity"}
)

// CSVJournal appends to two CSV files. Headers are written only to new files.
type CSVJournal struct {
	mu     sync.Mutex
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

func NewCSV(ordersPath, equityPath string) (*CSVJournal, error) {
	of, ow, err := openCSV(ordersPath, orderHeader)
	if err != nil {
		return nil, err
	}
	ef, ew, err := openCSV(equityPath, equityHeader)
	if err != nil {
		_ = of.Close()
		return nil, err
	}
	return &CSVJournal{orders: ow, equity: ew, of: of, ef: ef}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSVJournal) RecordOrder(o OrderRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if o.ID == "" {
		o.ID = id.At(o.Time)
	}
	err := j.orders.Write([]string{
		o.ID,
		o.Time.UTC().Format(time.RFC3339),
		o.Symbol,
		string(o.Side),
		f(o.Volume),
		optF(o.StopLoss),
		optF(o.TakeProfit),
		f(o.FillPrice),
		string(o.Status),
		o.Detail,
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.equity.Write([]string{
		e.Time.UTC().Format(time.RFC3339),
		f(e.Balance),
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func optF(p *float64) string {
	if p == nil {
		return ""
	}
	return f(*p)
}
