package sheets

import (
	"context"
	"fmt"
	"strconv"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
)

// DictEntry is one row of the dictionary sheet: a semantic field key, the
// column header it maps to, the display unit and an optional prompt hint.
type DictEntry struct {
	Key    string
	Header string
	Unit   string
	Hint   string
}

type FieldDictionary map[string]DictEntry

// Hint returns the dictionary prompt for a field key, or "" when the key
// has no hint. The dictionary is fetched once and cached; a failed load is
// retried on the next call.
func (c *Client) Hint(ctx context.Context, fieldKey string) (string, error) {
	dict, err := c.dictionary(ctx)
	if err != nil {
		return "", err
	}
	return dict[fieldKey].Hint, nil
}

func (c *Client) dictionary(ctx context.Context) (FieldDictionary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dict != nil {
		return c.dict, nil
	}

	resp, err := c.svc.Spreadsheets.Values.
		Get(c.cfg.SpreadsheetID, c.cfg.DictSheet+"!A2:D").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("load field dictionary: %w", err)
	}

	c.dict = parseDictionary(resp.Values)
	return c.dict, nil
}

func parseDictionary(values [][]any) FieldDictionary {
	dict := make(FieldDictionary, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		entry := DictEntry{Key: cellString(row[0])}
		if entry.Key == "" {
			continue
		}
		if len(row) > 1 {
			entry.Header = cellString(row[1])
		}
		if len(row) > 2 {
			entry.Unit = cellString(row[2])
		}
		if len(row) > 3 {
			entry.Hint = cellString(row[3])
		}
		dict[entry.Key] = entry
	}
	return dict
}

// History sheet column layout, matching AppendHistory's row order.
const (
	histColDate = iota
	histColUser
	histColType
	histColWeight
	histColVolume
	histColPrice
	histColDescription
	histColResult
)

func filterHistory(values [][]any, userID string) []contractx.HistoryRow {
	rows := make([]contractx.HistoryRow, 0, len(values))
	for _, raw := range values {
		if cell(raw, histColUser) != userID {
			continue
		}
		rows = append(rows, contractx.HistoryRow{
			Date:   cell(raw, histColDate),
			Type:   cell(raw, histColType),
			Weight: cell(raw, histColWeight),
			Volume: cell(raw, histColVolume),
			Price:  cell(raw, histColPrice),
			Result: cell(raw, histColResult),
		})
	}
	return rows
}

func cell(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return cellString(row[idx])
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
