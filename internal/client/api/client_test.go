package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bizdesk/internal/models"
	"github.com/iudanet/bizdesk/pkg/api"
)

func signToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Nil(t, client.httpClient.Transport)
}

func TestNewClient_Options(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient("http://localhost:8080",
		WithToken("opaque"),
		WithTimeout(5*time.Second),
		WithLogger(logger),
	)

	assert.Equal(t, "opaque", client.token)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.IsType(t, &loggingTransport{}, client.httpClient.Transport)
}

// TestClient_ListRecords проверяет получение коллекции
func TestClient_ListRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/task-assignments", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"taskId":10,"hours":1.50},{"id":"2"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	records, err := client.ListRecords(context.Background(), models.CollectionTaskAssignments)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID())
	assert.Equal(t, json.Number("1.50"), records[0]["hours"])
	assert.Equal(t, "2", records[1].ID())
}

func TestClient_ListRecords_NotAnArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL).ListRecords(context.Background(), models.CollectionClients)

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "list clients")
}

// TestClient_Errors проверяет обработку ошибочных ответов сервера
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		responseBody   interface{}
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:       "not found with message",
			statusCode: http.StatusNotFound,
			responseBody: api.ErrorResponse{
				Error:   "not_found",
				Message: "client not found",
			},
			expectedErrMsg: "server error (404): client not found",
		},
		{
			name:       "error field only",
			statusCode: http.StatusBadRequest,
			responseBody: api.ErrorResponse{
				Error: "invalid payload",
			},
			expectedErrMsg: "server error (400): invalid payload",
		},
		{
			name:           "plain text body",
			statusCode:     http.StatusInternalServerError,
			responseBody:   "Internal Server Error",
			expectedErrMsg: "server error (500): Internal Server Error",
		},
		{
			name:           "empty body",
			statusCode:     http.StatusBadGateway,
			responseBody:   "",
			expectedErrMsg: "request failed with status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if errResp, ok := tt.responseBody.(api.ErrorResponse); ok {
					_ = json.NewEncoder(w).Encode(errResp)
				} else {
					_, _ = w.Write([]byte(tt.responseBody.(string)))
				}
			}))
			defer server.Close()

			_, err := NewClient(server.URL).ListRecords(context.Background(), models.CollectionClients)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.statusCode, statusErr.StatusCode)
		})
	}
}

// TestClient_CreateRecord проверяет создание записи
func TestClient_CreateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/clients", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Acme", draft["name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101,"name":"Acme","createdAt":"2026-10-17T10:00:00Z"}`))
	}))
	defer server.Close()

	record, err := NewClient(server.URL).CreateRecord(context.Background(), models.CollectionClients, models.Record{"name": "Acme"})

	require.NoError(t, err)
	assert.Equal(t, "101", record.ID())
	assert.Equal(t, "2026-10-17T10:00:00Z", record["createdAt"])
}

func TestClient_CreateRecord_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"Acme"}`))
	}))
	defer server.Close()

	record, err := NewClient(server.URL).CreateRecord(context.Background(), models.CollectionClients, models.Record{"name": "Acme"})

	assert.ErrorIs(t, err, ErrMissingID)
	assert.Nil(t, record)
}

// TestClient_UpdateRecord проверяет частичное обновление записи
func TestClient_UpdateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/projects/7", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"done"}`, string(body))

		_, _ = w.Write([]byte(`{"id":7,"name":"Website","status":"done"}`))
	}))
	defer server.Close()

	record, err := NewClient(server.URL).UpdateRecord(context.Background(), models.CollectionProjects, "7", models.Record{"status": "done"})

	require.NoError(t, err)
	assert.Equal(t, "done", record["status"])
}

func TestClient_UpdateRecord_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	record, err := NewClient(server.URL).UpdateRecord(context.Background(), models.CollectionProjects, "7", models.Record{"status": "done"})

	require.NoError(t, err)
	assert.Nil(t, record)
}

// TestClient_DeleteRecord проверяет удаление записи
func TestClient_DeleteRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/employees/e-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewClient(server.URL).DeleteRecord(context.Background(), models.CollectionEmployees, "e-1")
	assert.NoError(t, err)
}

func TestClient_DeleteRecord_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "employee has assignments"})
	}))
	defer server.Close()

	err := NewClient(server.URL).DeleteRecord(context.Background(), models.CollectionEmployees, "e-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete employees/e-1")
	assert.Contains(t, err.Error(), "employee has assignments")
}

func TestClient_BearerToken(t *testing.T) {
	token := signToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, WithToken(token)).ListRecords(context.Background(), models.CollectionTasks)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_ExpiredTokenNotSent(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	token := signToken(t, time.Now().Add(-time.Minute))
	_, err := NewClient(server.URL, WithToken(token)).ListRecords(context.Background(), models.CollectionTasks)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).ListRecords(ctx, models.CollectionTasks)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	assert.False(t, tokenExpired("opaque-token", now))
	assert.False(t, tokenExpired(signToken(t, now.Add(time.Minute)), now))
	assert.True(t, tokenExpired(signToken(t, now.Add(-time.Minute)), now))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.False(t, tokenExpired(signed, now))
}

func TestLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tasks") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := NewClient(server.URL, WithLogger(logger), WithToken("secret-token"))

	_, err := client.ListRecords(context.Background(), models.CollectionClients)
	require.NoError(t, err)
	_, err = client.ListRecords(context.Background(), models.CollectionTasks)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "path=/api/v1/clients")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=503")
	assert.NotContains(t, out, "secret-token")
}
