package handlers_test

import (
	"SecretKeeper/internal/handlers"
	"SecretKeeper/internal/model"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enc(s string) model.EncryptedField {
	return model.EncryptedField{Ciphertext: s, IV: "iv", Tag: "tag"}
}

func createBody(typ model.SecretType, value string) handlers.CreateSecretRequest {
	return handlers.CreateSecretRequest{
		WorkspaceID: "w1",
		Environment: "prod",
		Type:        typ,
		SecretKey:   enc("key"),
		SecretValue: enc(value),
	}
}

func bootstrap(t *testing.T, h http.Handler) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/v1/workspaces/w1/bootstrap", nil, "alice")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestSecretHandler_Unauthorized(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/v1/secrets?workspaceId=w1&environment=prod", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSecretHandler_Bootstrap(t *testing.T) {
	h := newTestRouter(t)
	bootstrap(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/workspaces/w1/bootstrap", nil, "alice")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"workspaceId":"w1","created":false}`, rr.Body.String())
}

func TestSecretHandler_CreateReadFlow(t *testing.T) {
	h := newTestRouter(t)
	bootstrap(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/secrets/DB_PASSWORD", createBody(model.SecretTypeShared, "S"), "alice")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/v1/secrets/DB_PASSWORD", createBody(model.SecretTypeShared, "S"), "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/secrets/DB_PASSWORD", createBody(model.SecretTypePersonal, "P"), "bob")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/v1/secrets/DB_PASSWORD?workspaceId=w1&environment=prod", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	var one struct {
		Secret handlers.SecretDTO `json:"secret"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, "P", one.Secret.SecretValue.Ciphertext)
	assert.Equal(t, "bob", one.Secret.User)

	rr = do(t, h, http.MethodGet, "/api/v1/secrets/DB_PASSWORD?workspaceId=w1&environment=prod&type=shared", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, "S", one.Secret.SecretValue.Ciphertext)

	rr = do(t, h, http.MethodGet, "/api/v1/secrets?workspaceId=w1&environment=prod", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var many struct {
		Secrets []handlers.SecretDTO `json:"secrets"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &many))
	require.Len(t, many.Secrets, 1)
	assert.Equal(t, "S", many.Secrets[0].SecretValue.Ciphertext)

	rr = do(t, h, http.MethodPost, "/api/v1/secrets/batch", handlers.BatchReadRequest{
		WorkspaceID: "w1", Environment: "prod", SecretNames: []string{"DB_PASSWORD", "NOPE"},
	}, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &many))
	require.Len(t, many.Secrets, 1)
	assert.Equal(t, "P", many.Secrets[0].SecretValue.Ciphertext)
}

func TestSecretHandler_UpdateDelete(t *testing.T) {
	h := newTestRouter(t)
	bootstrap(t, h)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/secrets/TOKEN", createBody(model.SecretTypeShared, "v1"), "alice").Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/secrets/TOKEN", createBody(model.SecretTypePersonal, "p"), "bob").Code)

	rr := do(t, h, http.MethodPatch, "/api/v1/secrets/TOKEN", handlers.UpdateSecretRequest{
		WorkspaceID: "w1", Environment: "prod", Type: model.SecretTypeShared, SecretValue: enc("v2"),
	}, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var one struct {
		Secret handlers.SecretDTO `json:"secret"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, int64(2), one.Secret.Version)
	assert.Equal(t, "key", one.Secret.SecretKey.Ciphertext)

	rr = do(t, h, http.MethodPatch, "/api/v1/secrets/MISSING", handlers.UpdateSecretRequest{
		WorkspaceID: "w1", Environment: "prod", Type: model.SecretTypeShared, SecretValue: enc("v2"),
	}, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/v1/secrets/TOKEN", handlers.DeleteSecretRequest{
		WorkspaceID: "w1", Environment: "prod", Type: model.SecretTypeShared,
	}, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var del struct {
		Secret  handlers.SecretDTO   `json:"secret"`
		Deleted []handlers.SecretDTO `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &del))
	assert.Len(t, del.Deleted, 2)

	rr = do(t, h, http.MethodGet, "/api/v1/secrets/TOKEN?workspaceId=w1&environment=prod", nil, "bob")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSecretHandler_Errors(t *testing.T) {
	h := newTestRouter(t)

	// соли нет: 500 без деталей
	rr := do(t, h, http.MethodPost, "/api/v1/secrets/X", createBody(model.SecretTypeShared, "v"), "alice")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())

	bootstrap(t, h)
	rr = do(t, h, http.MethodPost, "/api/v1/secrets/ORPHAN", createBody(model.SecretTypePersonal, "v"), "bob")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no corresponding shared secret")

	rr = do(t, h, http.MethodGet, "/api/v1/secrets?workspaceId=w1", nil, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// пустое тело
	rr = do(t, h, http.MethodPost, "/api/v1/secrets/batch", nil, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// Ответы API никогда не содержат blind index.
func TestSecretHandler_NoBlindIndexInResponses(t *testing.T) {
	h := newTestRouter(t)
	bootstrap(t, h)

	bodies := []string{}
	collect := func(code int, body string) {
		require.Less(t, code, 300, body)
		bodies = append(bodies, body)
	}
	rr := do(t, h, http.MethodPost, "/api/v1/secrets/NAME", createBody(model.SecretTypeShared, "v"), "alice")
	collect(rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodGet, "/api/v1/secrets/NAME?workspaceId=w1&environment=prod", nil, "alice")
	collect(rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodGet, "/api/v1/secrets?workspaceId=w1&environment=prod", nil, "alice")
	collect(rr.Code, rr.Body.String())

	for _, b := range bodies {
		lower := strings.ToLower(b)
		assert.NotContains(t, lower, "blind")
		assert.NotContains(t, b, "NAME")

		var generic map[string]any
		require.NoError(t, json.Unmarshal([]byte(b), &generic))
	}
}

func TestSecretHandler_Metrics(t *testing.T) {
	h := newTestRouter(t)
	bootstrap(t, h)

	rr := do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `secretkeeper_operations_total{op="bootstrap",result="ok"} 1`)
}
