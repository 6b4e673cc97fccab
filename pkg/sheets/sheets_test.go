package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func TestParseDictionary(t *testing.T) {
	t.Parallel()

	dict := parseDictionary([][]any{
		{"weight", "Вес", "кг", "Введите вес:"},
		{"count", "Количество", ""},
		{""},
		{},
		{"price", "Цена", "¥", "Введите стоимость:"},
	})

	require.Len(t, dict, 3)
	require.Equal(t, "Введите вес:", dict["weight"].Hint)
	require.Equal(t, "Вес", dict["weight"].Header)
	require.Empty(t, dict["count"].Hint)
	require.Equal(t, "¥", dict["price"].Unit)
}

func TestFilterHistory(t *testing.T) {
	t.Parallel()

	values := [][]any{
		{"01.02.2026", "42", "cargo", 12.5, 0.45, 1500, "boxes", "4250"},
		{"02.02.2026", "7", "white", 3, 0.1, 700, "bags", "900"},
		{"03.02.2026", "42", "white", 1, 0.05, 100},
	}

	rows := filterHistory(values, "42")
	require.Len(t, rows, 2)
	require.Equal(t, "01.02.2026", rows[0].Date)
	require.Equal(t, "12.5", rows[0].Weight)
	require.Equal(t, "4250", rows[0].Result)
	// Short row: absent cells come back empty, not out of range.
	require.Equal(t, "white", rows[1].Type)
	require.Empty(t, rows[1].Result)

	require.Empty(t, filterHistory(values, "unknown"))
	require.NotNil(t, filterHistory(nil, "42"))
}

func TestCellString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "12.5", cellString(12.5))
	require.Equal(t, "1500", cellString(float64(1500)))
	require.Equal(t, "x", cellString("x"))
	require.Equal(t, "", cellString(nil))
	require.Equal(t, "true", cellString(true))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	client, err := NewWithService(svc, Config{
		SpreadsheetID: "sheet-1",
		CalcSheet:     "Расчет",
		HistorySheet:  "История",
		DictSheet:     "Словарь",
		SettleDelay:   time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func valuesResponse(w http.ResponseWriter, values [][]any) {
	_ = json.NewEncoder(w).Encode(&sheetsapi.ValueRange{Values: values})
}

func TestHintCachesDictionary(t *testing.T) {
	t.Parallel()

	loads := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loads++
		valuesResponse(w, [][]any{{"weight", "Вес", "кг", "Сколько весит коробка?"}})
	}))

	ctx := context.Background()
	hint, err := client.Hint(ctx, "weight")
	require.NoError(t, err)
	require.Equal(t, "Сколько весит коробка?", hint)

	// Second lookup must hit the cache, absent keys come back empty.
	hint, err = client.Hint(ctx, "volumePerUnit")
	require.NoError(t, err)
	require.Empty(t, hint)
	require.Equal(t, 1, loads)
}

func TestHintRetriesAfterFailedLoad(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		valuesResponse(w, [][]any{{"price", "Цена", "¥", "Почем товар?"}})
	}))

	ctx := context.Background()
	_, err := client.Hint(ctx, "price")
	require.Error(t, err)

	hint, err := client.Hint(ctx, "price")
	require.NoError(t, err)
	require.Equal(t, "Почем товар?", hint)
}

func TestAwaitResult(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "U5")
		valuesResponse(w, [][]any{{"4 250"}})
	}))

	got, err := client.AwaitResult(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "4 250", got)
}

func TestAwaitResultEmptyCell(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valuesResponse(w, nil)
	}))

	got, err := client.AwaitResult(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAwaitResultHonorsContext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valuesResponse(w, nil)
	}))
	client.cfg.SettleDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.AwaitResult(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHistoryFiltersByUser(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "values/"))
		valuesResponse(w, [][]any{
			{"01.02.2026", "42", "cargo", 12.5, 0.45, 1500, "boxes", "4250"},
			{"02.02.2026", "9", "white", 1, 0.1, 10, "", "11"},
		})
	}))

	rows, err := client.History(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "cargo", rows[0].Type)
}
