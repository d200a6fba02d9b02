package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/deploymenttheory/go-tryon-dashboard-client/credentials"
	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/deploymenttheory/go-tryon-dashboard-client/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "0123456789abcdef0123456789abcdef"
	testAPISecret = "shpss_test_secret_value"
	testShop      = "acme.myshopify.com"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := ExecuteWithIO(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func withKeyring(t *testing.T) *keyring.ArrayKeyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	restore := credentials.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
	return ring
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.GetUserAgentHeader()+"\n", out)
}

func TestGet_WithParamsAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "vto", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer static", r.Header.Get("Authorization"))
		assert.Equal(t, "t-1", r.Header.Get("X-Trace"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[{"name":"Hat"},{"name":"Scarf"}]}`)
	}))
	defer server.Close()

	out, _, err := run(t, "", "get", "/api/products",
		"--base-url", server.URL, "--token", "static",
		"-p", "type=vto", "-H", "X-Trace: t-1",
		"--query", "[.items[].name]")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"Hat", "Scarf"}, names)
}

func TestGet_QueryStringResultPrintsRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"Hat"}`)
	}))
	defer server.Close()

	out, _, err := run(t, "", "get", "/api/products/1", "--base-url", server.URL, "--token", "static", "-q", ".name")
	require.NoError(t, err)
	assert.Equal(t, "Hat\n", out)
}

func TestPost_BodyFromStdin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"enabled":true}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	out, _, err := run(t, `{"enabled":true}`, "post", "/api/settings", "--base-url", server.URL, "--token", "static", "--data", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, out)
}

func TestPost_InvalidBody(t *testing.T) {
	_, _, err := run(t, "", "post", "/api/settings", "--base-url", "http://localhost", "--token", "static", "--data", "{nope")
	assert.ErrorContains(t, err, "valid JSON")
}

func TestDelete_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	out, _, err := run(t, "", "delete", "/api/products/1", "--base-url", server.URL, "--token", "static")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGet_UnauthorizedNeedsReauth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, _, err := run(t, "", "get", "/api/ping", "--base-url", server.URL, "--token", "static", "--shop", testShop)
	require.Error(t, err)

	var reauth *ReauthRequiredError
	require.True(t, errors.As(err, &reauth))
	assert.Equal(t, testShop, reauth.Shop)
	assert.Equal(t, server.URL+"/api/auth/initiate?shop="+testShop, reauth.URL)
	assert.Equal(t, ExitAuth, ExitCode(err))
}

func TestGet_ReauthFollowsEnvBaseURLOverFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "tryon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"BaseURL": "https://old.example.com"}`), 0o600))
	t.Setenv(httpclient.EnvBaseURL, server.URL)

	_, _, err := run(t, "", "get", "/api/ping", "--config", path, "--token", "static", "--shop", "acme")

	var reauth *ReauthRequiredError
	require.True(t, errors.As(err, &reauth), "got %v", err)
	assert.Equal(t, "acme", reauth.Shop)
	assert.Equal(t, server.URL+"/api/auth/initiate?shop=acme", reauth.URL)
}

func TestGet_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"db down"}`)
	}))
	defer server.Close()

	_, _, err := run(t, "", "get", "/api/ping", "--base-url", server.URL, "--token", "static")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, ExitAPI, ExitCode(err))
}

func overviewServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/Dashboard/GetCalculations":
			assert.Equal(t, "2026-02-01T00:00:00.000Z", r.URL.Query().Get("from"))
			_, _ = io.WriteString(w, `{"totalUsers":3,"totalTryOns":1500}`)
		case "/api/Dashboard/GetActiveProductsCount":
			_, _ = io.WriteString(w, `12`)
		case "/api/Dashboard/GetTriesPerMonth":
			_, _ = io.WriteString(w, `[{"date":"2026-02-03","amount":5}]`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOverview(t *testing.T) {
	server := overviewServer(t)
	defer server.Close()

	out, _, err := run(t, "", "overview", "--month", "2026-02", "--base-url", server.URL, "--token", "static", "--query", ".cards[0].value")
	require.NoError(t, err)
	assert.Equal(t, "1,500\n", out)

	out, _, err = run(t, "", "overview", "--month", "2026-02", "--base-url", server.URL, "--token", "static", "--lang", "de", "-q", ".cards[0].value")
	require.NoError(t, err)
	assert.Equal(t, "1.500\n", out)
}

func TestOverview_WritesChart(t *testing.T) {
	server := overviewServer(t)
	defer server.Close()

	chart := filepath.Join(t.TempDir(), "usage.html")
	out, errOut, err := run(t, "", "overview", "--month", "2026-02", "--base-url", server.URL, "--token", "static", "--chart", chart)
	require.NoError(t, err)
	assert.Contains(t, errOut, chart)

	var overview map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.EqualValues(t, 12, overview["activeProducts"])

	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Feb 03")
}

func TestOverview_InvalidMonth(t *testing.T) {
	_, _, err := run(t, "", "overview", "--month", "02-2026", "--token", "static")
	assert.ErrorContains(t, err, "YYYY-MM")
}

func TestBillingEstimate(t *testing.T) {
	out, _, err := run(t, "", "billing", "estimate", "--users", "3528", "--previous", "7932")
	require.NoError(t, err)
	assert.Contains(t, out, "Current month estimate: 8,467 DKK")
	assert.Contains(t, out, "Cost per unique user: 2.4 DKK")
	assert.Contains(t, out, "Previous month: 7,932 DKK")
	assert.Contains(t, out, "+6.7% vs prior month")
}

func TestBillingEstimate_CustomPlanJSON(t *testing.T) {
	out, _, err := run(t, "", "billing", "estimate", "--users", "101",
		"--free-users", "100", "--monthly-fee", "50", "--overage-price", "0.5", "--currency", "eur",
		"--query", "{total, overageUnits, currency: .plan.currency}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":5050,"overageUnits":1,"currency":"EUR"}`, out)
}

func TestBillingEstimate_RequiresUsers(t *testing.T) {
	_, _, err := run(t, "", "billing", "estimate")
	assert.ErrorContains(t, err, "users")
}

func TestAuthAndTokenLifecycle(t *testing.T) {
	withKeyring(t)

	out, _, err := run(t, testAPISecret+"\n", "auth", "set-secret", "--api-key", testAPIKey, "--user-id", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `profile "default"`)
	assert.NotContains(t, out, testAPISecret)

	out, _, err = run(t, "", "auth", "status", "-q", ".api_key")
	require.NoError(t, err)
	assert.Equal(t, testAPIKey+"\n", out)

	token, _, err := run(t, "", "token", "mint", "--shop", testShop)
	require.NoError(t, err)
	token = strings.TrimSpace(token)
	assert.Equal(t, 2, strings.Count(token, "."))

	out, _, err = run(t, "", "token", "inspect", token, "--verify")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, testShop, info["shop"])
	assert.Equal(t, "7", info["sub"])
	assert.Equal(t, false, info["expired"])

	_, _, err = run(t, "", "auth", "clear")
	require.NoError(t, err)
	_, _, err = run(t, "", "auth", "status")
	assert.ErrorIs(t, err, credentials.ErrNotConfigured)
}

func TestAuthSetSecret_Validation(t *testing.T) {
	withKeyring(t)

	_, _, err := run(t, "", "auth", "set-secret", "--api-key", "short", "--api-secret", testAPISecret)
	assert.ErrorContains(t, err, "32 hexadecimal")

	_, _, err = run(t, "", "auth", "set-secret", "--api-key", testAPIKey, "--api-secret", "tiny")
	assert.ErrorContains(t, err, "16 characters")
}

func TestRequestsMintTokensFromKeyring(t *testing.T) {
	withKeyring(t)
	require.NoError(t, credentials.Save("default", credentials.AppCredentials{APIKey: testAPIKey, APISecret: testAPISecret}))
	t.Setenv(EnvToken, "")

	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
	}))
	defer server.Close()

	for i := 0; i < 2; i++ {
		_, _, err := run(t, "", "get", "/api/ping", "--base-url", server.URL, "--shop", testShop)
		require.NoError(t, err)
	}
	require.Len(t, seen, 2)
	assert.True(t, strings.HasPrefix(seen[0], "Bearer ey"))
	assert.NotEqual(t, seen[0], seen[1], "every request carries a freshly minted token")
}

func TestRequests_NoCredentials(t *testing.T) {
	withKeyring(t)
	t.Setenv(EnvToken, "")

	_, _, err := run(t, "", "get", "/api/ping", "--base-url", "http://localhost", "--shop", testShop)
	assert.ErrorIs(t, err, credentials.ErrNotConfigured)
}

func TestEnvFile_FillsUnsetVariables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer from-file", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	// t.Setenv restores the unset state once the test ends.
	for _, key := range []string{httpclient.EnvBaseURL, EnvToken} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := httpclient.EnvBaseURL + "=" + server.URL + "\n" + EnvToken + "=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, _, err := run(t, "", "get", "/api/ping", "--env-file", path, "-q", ".ok")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestEnvFile_Missing(t *testing.T) {
	_, _, err := run(t, "", "get", "/api/ping", "--env-file", filepath.Join(t.TempDir(), "nope.env"), "--token", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load --env-file")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"reauth", &ReauthRequiredError{Shop: testShop}, ExitAuth},
		{"auth", &httpclient.AuthError{Shop: testShop}, ExitAuth},
		{"cancelled", &httpclient.CancelledError{Err: context.Canceled}, ExitCancelled},
		{"token", &httpclient.TokenError{Err: errors.New("x")}, ExitToken},
		{"transport", &httpclient.TransportError{Err: errors.New("x")}, ExitTransport},
		{"api", &httpclient.APIError{StatusCode: 500}, ExitAPI},
		{"other", errors.New("x"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestApplyQuery(t *testing.T) {
	doc := map[string]any{"a": []any{1.0, 2.0, 3.0}}

	got, err := applyQuery(doc, ".a[]")
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, got)

	got, err = applyQuery(doc, `.a | map(select(. \!= 2))`)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 3.0}, got)

	got, err = applyQuery(doc, "")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = applyQuery(doc, ".a[")
	assert.ErrorContains(t, err, "invalid query expression")

	_, err = applyQuery(doc, ".a.b")
	assert.ErrorContains(t, err, "query error")
}
