// dashboard/dashboard_test.go
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/authenticationhandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// fakeAPI answers each path with a JSON document or an error.
type fakeAPI struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	queries map[string]httpclient.Query
	reauth  string
}

func (f *fakeAPI) Get(ctx context.Context, path string, query httpclient.Query, out any, opts ...httpclient.RequestOption) error {
	f.mu.Lock()
	if f.queries == nil {
		f.queries = map[string]httpclient.Query{}
	}
	f.queries[path] = query
	f.mu.Unlock()

	if err, ok := f.errs[path]; ok {
		return err
	}
	body, ok := f.bodies[path]
	if !ok || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) ReauthURL(authErr *httpclient.AuthError) string {
	return f.reauth + authErr.Shop
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Time
		wantFrom string
		wantTo   string
	}{
		{"mid month", time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC), "2026-03-01T00:00:00.000Z", "2026-03-31T23:59:59.999Z"},
		{"february leap year", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "2024-02-01T00:00:00.000Z", "2024-02-29T23:59:59.999Z"},
		{"december rolls year", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), "2025-12-01T00:00:00.000Z", "2025-12-31T23:59:59.999Z"},
		{"local month wins", time.Date(2026, 4, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*3600)), "2026-04-01T00:00:00.000Z", "2026-04-30T23:59:59.999Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := MonthRange(tt.in)
			assert.Equal(t, tt.wantFrom, from.Format(httpclient.QueryTimeLayout))
			assert.Equal(t, tt.wantTo, to.Format(httpclient.QueryTimeLayout))
		})
	}
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "March 2026", PeriodLabel(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Current Month", PeriodLabel(time.Time{}))
}

func TestOverview_Success(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		PathCalculations:        `{"totalUsers": 3528, "totalTryOns": 12345}`,
		PathActiveProductsCount: `247`,
		PathTriesPerMonth:       `[{"date":"2026-03-01T00:00:00","amount":10},{"date":"2026-03-02","amount":null},{"date":"garbage","amount":3},"skip"]`,
	}}

	o, err := NewService(api, nil).Overview(context.Background(), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.False(t, o.NeedsReauth())
	assert.Equal(t, int64(3528), o.TotalUsers)
	assert.Equal(t, int64(12345), o.TotalTryOns)
	assert.Equal(t, int64(247), o.ActiveProducts)
	assert.Equal(t, "March 2026", o.Period)

	require.Len(t, o.Daily, 3)
	assert.Equal(t, DailyPoint{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Label: "Mar 01", TryOns: 10}, o.Daily[0])
	assert.Equal(t, "Mar 02", o.Daily[1].Label)
	assert.Zero(t, o.Daily[1].TryOns)
	assert.Equal(t, "garbage", o.Daily[2].Label)

	require.Len(t, o.Cards, 2)
	assert.Equal(t, "Total Try-Ons", o.Cards[0].Title)
	assert.Equal(t, "12,345", o.Cards[0].Value)
	assert.Equal(t, "247", o.Cards[1].Value)
	assert.Equal(t, "March 2026", o.Cards[1].Subtitle)

	from, to := MonthRange(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, httpclient.Query{"from": from, "to": to}, api.queries[PathCalculations])
	assert.Equal(t, httpclient.Query{"from": from, "to": to}, api.queries[PathTriesPerMonth])
	assert.Nil(t, api.queries[PathActiveProductsCount])
}

func TestOverview_DefensiveCoercion(t *testing.T) {
	tests := []struct {
		name   string
		bodies map[string]string
	}{
		{"empty bodies", map[string]string{}},
		{"wrong shapes", map[string]string{
			PathCalculations:        `[1,2]`,
			PathActiveProductsCount: `"many"`,
			PathTriesPerMonth:       `{"date":"2026-03-01"}`,
		}},
		{"missing fields", map[string]string{
			PathCalculations:        `{"totalUsers": "x"}`,
			PathActiveProductsCount: `null`,
			PathTriesPerMonth:       `null`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewService(&fakeAPI{bodies: tt.bodies}, nil).Overview(context.Background(), time.Now())
			require.NoError(t, err)
			assert.Zero(t, o.TotalUsers)
			assert.Zero(t, o.TotalTryOns)
			assert.Zero(t, o.ActiveProducts)
			assert.NotNil(t, o.Daily)
			assert.Empty(t, o.Daily)
		})
	}
}

func TestOverview_AuthFailureRedirects(t *testing.T) {
	api := &fakeAPI{
		reauth: "https://auth.example.com/api/auth/initiate?shop=",
		errs:   map[string]error{PathActiveProductsCount: &httpclient.AuthError{Shop: "acme.myshopify.com"}},
	}

	o, err := NewService(api, nil).Overview(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, o.NeedsReauth())
	assert.Equal(t, "https://auth.example.com/api/auth/initiate?shop=acme.myshopify.com", o.RedirectURL)
	assert.Empty(t, o.Cards)
}

func TestOverview_Cancelled(t *testing.T) {
	api := &fakeAPI{errs: map[string]error{
		PathCalculations: &httpclient.CancelledError{Method: http.MethodGet, URL: PathCalculations, Err: context.Canceled},
	}}

	o, err := NewService(api, nil).Overview(context.Background(), time.Now())
	assert.Nil(t, o)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOverview_APIError(t *testing.T) {
	api := &fakeAPI{errs: map[string]error{
		PathTriesPerMonth: &httpclient.APIError{StatusCode: 500, StatusText: "Internal Server Error", Message: "db down"},
	}}

	o, err := NewService(api, nil).Overview(context.Background(), time.Now())
	assert.Nil(t, o)
	assert.True(t, httpclient.IsAPIError(err))
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(language.English, 1234567))
	assert.Equal(t, "1.234.567", FormatCount(language.German, 1234567))
	assert.Equal(t, "0", FormatCount(language.English, 0))
}

func TestOverview_ThroughClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		switch r.URL.Path {
		case PathCalculations:
			assert.Equal(t, "2026-03-01T00:00:00.000Z", r.URL.Query().Get("from"))
			assert.Equal(t, "2026-03-31T23:59:59.999Z", r.URL.Query().Get("to"))
			_, _ = io.WriteString(w, `{"totalUsers":2,"totalTryOns":1500}`)
		case PathActiveProductsCount:
			assert.Empty(t, r.URL.RawQuery)
			_, _ = io.WriteString(w, `9`)
		case PathTriesPerMonth:
			_, _ = io.WriteString(w, `[{"date":"2026-03-05T00:00:00Z","amount":7}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURL:  server.URL,
		Shop:     "acme.myshopify.com",
		LogLevel: "LogLevelNone",
	}, true, authenticationhandler.StaticTokenProvider("session"))
	require.NoError(t, err)

	o, err := NewService(client, client.Logger).Overview(context.Background(), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), o.TotalTryOns)
	assert.Equal(t, "1,500", o.Cards[0].Value)
	assert.Equal(t, int64(9), o.ActiveProducts)
	require.Len(t, o.Daily, 1)
	assert.Equal(t, "Mar 05", o.Daily[0].Label)
}

func TestOverview_ThroughClientUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURL:     server.URL,
		AuthBaseURL: "https://app.example.com",
		Shop:        "acme.myshopify.com",
		LogLevel:    "LogLevelNone",
	}, true, authenticationhandler.StaticTokenProvider("session"))
	require.NoError(t, err)

	o, err := NewService(client, nil).Overview(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/api/auth/initiate?shop=acme.myshopify.com", o.RedirectURL)
}

func TestRenderDailyUsageChart(t *testing.T) {
	o := &Overview{
		Period: "March 2026",
		Daily: []DailyPoint{
			{Label: "Mar 01", TryOns: 4},
			{Label: "Mar 02", TryOns: 9},
		},
	}

	html, err := RenderDailyUsageChart(o, ChartOptions{AssetsHost: "https://cdn.example.com/echarts/"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "<html"), "renders a standalone page")
	assert.Contains(t, html, "Daily Usage")
	assert.Contains(t, html, "March 2026")
	assert.Contains(t, html, "Mar 02")
	assert.Contains(t, html, "https://cdn.example.com/echarts/")
	assert.Contains(t, html, dailyUsageColor)

	_, err = RenderDailyUsageChart(nil, ChartOptions{})
	assert.Error(t, err)
}
