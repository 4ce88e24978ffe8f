package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CandleCSVHeader is the column order written by WriteCandlesCSV.
var CandleCSVHeader = []string{"time", "symbol", "timeframe", "volume", "o", "h", "l", "c"}

// WriteCandlesCSV writes one row per candle with RFC3339 times in the
// candle's own zone. It returns the number of rows written.
func WriteCandlesCSV(w io.Writer, symbol string, tf Timeframe, candles []Candle) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CandleCSVHeader); err != nil {
		return 0, err
	}

	written := 0
	for _, c := range candles {
		row := []string{
			c.Time.Format(time.RFC3339),
			symbol,
			string(tf),
			num(c.Volume),
			num(c.Open), num(c.High), num(c.Low), num(c.Close),
		}
		if err := cw.Write(row); err != nil {
			return written, err
		}
		written++
	}

	cw.Flush()
	return written, cw.Error()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ReadCandlesCSV reads rows written by WriteCandlesCSV. Columns are found by
// header name, so extra columns are ignored. Times are RFC3339 or RFC3339Nano
// and rows are returned in file order.
func ReadCandlesCSV(r io.Reader) ([]Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, need := range []string{"time", "o", "h", "l", "c"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("candle csv: missing column %q", need)
		}
	}

	var out []Candle
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		c, err := parseCandleRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("candle csv line %d: %w", line, err)
		}
		out = append(out, c)
	}
}

func parseCandleRow(row []string, col map[string]int) (Candle, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ts := field("time")
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return Candle{}, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	var c Candle
	c.Time = t
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"o", &c.Open}, {"h", &c.High}, {"l", &c.Low}, {"c", &c.Close}, {"volume", &c.Volume},
	} {
		s := field(f.name)
		if s == "" && f.name == "volume" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Candle{}, fmt.Errorf("bad %s %q: %w", f.name, s, err)
		}
		*f.dst = v
	}
	return c, nil
}
