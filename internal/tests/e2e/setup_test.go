package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sasmit28/CivicApp/internal/app"
	"github.com/Sasmit28/CivicApp/internal/config"
)

// stack is one running instance of the service over sqlite and miniredis
type stack struct {
	t         *testing.T
	container *app.Container
	server    *httptest.Server
	client    *http.Client
}

func testConfig(dir, redisAddr string) *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		DBDriver:          "sqlite",
		DSN:               filepath.Join(dir, "civic.db"),
		RedisAddr:         redisAddr,
		JWTSecret:         "e2e-secret",
		JWTIssuer:         "civicsvc-e2e",
		AccessTTL:         time.Hour,
		OTP_TTL:           5 * time.Minute,
		OTP_Length:        6,
		OTP_Countdown:     30,
		OTP_MaxAttempts:   5,
		OTP_AcceptAnyCode: true,
		OTP_HashCost:      4,
		CountryCode:       "+91",
		CasbinModelPath:   "../../../config/rbac_model.conf",
		RatePerMinute:     600,
		RateBurst:         50,
	}
}

// startStack builds the full container. The database lives in dir and
// survives restarts as long as the same miniredis is reused.
func startStack(t *testing.T, dir string, mr *miniredis.Miniredis) *stack {
	t.Helper()

	c, err := app.NewContainer(context.Background(), testConfig(dir, mr.Addr()), zap.NewNop())
	require.NoError(t, err)

	s := &stack{
		t:         t,
		container: c,
		server:    httptest.NewServer(app.Router(c)),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	t.Cleanup(s.stop)
	return s
}

func (s *stack) stop() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
	if s.container != nil {
		_ = s.container.Close()
		s.container = nil
	}
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (r response) data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

func (s *stack) call(method, path, device, token string, body interface{}) response {
	s.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(s.t, err)
	}

	req, err := http.NewRequest(method, s.server.URL+path, bytes.NewReader(payload))
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode}
	_ = json.NewDecoder(resp.Body).Decode(&out.Body)
	return out
}

// login walks the phone and OTP screens and returns the bearer token
func (s *stack) login(device, phone string) string {
	s.t.Helper()

	r := s.call(http.MethodPost, "/auth/phone", device, "", map[string]string{"phone": phone})
	require.Equal(s.t, http.StatusOK, r.Status, r.Body)

	r = s.call(http.MethodPost, "/auth/otp/verify", device, "", map[string]string{"code": "424242"})
	require.Equal(s.t, http.StatusOK, r.Status, r.Body)

	token, _ := r.data()["access_token"].(string)
	require.NotEmpty(s.t, token)
	return token
}
