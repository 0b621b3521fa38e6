package handlers_test

import (
	"SecretKeeper/internal/blindindex"
	"SecretKeeper/internal/config"
	"SecretKeeper/internal/events"
	"SecretKeeper/internal/handlers"
	"SecretKeeper/internal/keys"
	"SecretKeeper/internal/metrics"
	"SecretKeeper/internal/middleware"
	"SecretKeeper/internal/repo"
	"SecretKeeper/internal/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

// Local light sink for side effects
type nopPublisher struct{}

func (nopPublisher) Publish(...events.Event) {}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	p, err := keys.New("0123456789abcdef0123456789abcdef", "")
	require.NoError(t, err)

	collector := metrics.NewCollector(nil)
	store := blindindex.NewSaltStore(repo.NewSaltRepository(db), p)
	gen := blindindex.NewGenerator(store, blindindex.Params{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32}, collector)
	svc := service.NewSecretService(repo.NewSecretRepository(db), gen, store, nopPublisher{}, collector, zap.NewNop().Sugar())

	cfg := &config.Config{AuthSecret: testSecret, OperationTimeout: 5 * time.Second}
	return handlers.NewHandler(svc, collector.Handler(), zap.NewNop().Sugar(), cfg).Router
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := middleware.BuildJWTString(userID, testSecret)
	require.NoError(t, err)
	return tok
}

// do выполняет запрос от имени пользователя (пустой user: без токена).
func do(t *testing.T, h http.Handler, method, path string, body any, user string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
