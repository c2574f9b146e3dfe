package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/bizdesk/internal/models"
	"github.com/iudanet/bizdesk/pkg/api"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrMissingID indicates that the server answered a write without an id.
var ErrMissingID = errors.New("response record has no id")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger enables request logging through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		now:     time.Now,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger != nil {
		next := c.httpClient.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		c.httpClient.Transport = &loggingTransport{next: next, logger: c.logger}
	}

	return c
}

// ListRecords fetches every record of a collection
func (c *Client) ListRecords(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	body, err := c.doRequest(ctx, http.MethodGet, api.CollectionPath(collection.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("list %s request failed: %w", collection, err)
	}

	records, err := models.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

// CreateRecord creates a record and returns the server's version of it
func (c *Client) CreateRecord(ctx context.Context, collection models.Collection, draft models.Record) (models.Record, error) {
	body, err := c.doRequest(ctx, http.MethodPost, api.CollectionPath(collection.String()), draft)
	if err != nil {
		return nil, fmt.Errorf("create %s request failed: %w", collection, err)
	}

	return decodeWritten(collection, body)
}

// UpdateRecord sends a partial update and returns the server's version of the record
func (c *Client) UpdateRecord(ctx context.Context, collection models.Collection, id string, patch models.Record) (models.Record, error) {
	body, err := c.doRequest(ctx, http.MethodPatch, api.RecordPath(collection.String(), id), patch)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s request failed: %w", collection, id, err)
	}

	// Сервер может ответить 204 без тела
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return decodeWritten(collection, body)
}

// DeleteRecord deletes a record
func (c *Client) DeleteRecord(ctx context.Context, collection models.Collection, id string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, api.RecordPath(collection.String(), id), nil); err != nil {
		return fmt.Errorf("delete %s/%s request failed: %w", collection, id, err)
	}
	return nil
}

func decodeWritten(collection models.Collection, body []byte) (models.Record, error) {
	record, err := models.DecodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}
	if record.ID() == "" {
		return nil, fmt.Errorf("%s: %w", collection, ErrMissingID)
	}
	return record, nil
}

// doRequest выполняет HTTP запрос и возвращает тело успешного ответа
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		// Истекший JWT не отправляем: сервер всё равно ответит 401
		if tokenExpired(c.token, c.now()) {
			return nil, ErrTokenExpired
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		} else {
			statusErr.Message = string(bytes.TrimSpace(respBody))
		}
		return nil, statusErr
	}

	return respBody, nil
}
