package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikirelay/internal/config"
	"wikirelay/internal/logger"
	"wikirelay/internal/relay"
	"wikirelay/internal/wiki"
)

type stubLogStore struct{}

func (stubLogStore) GetEntry(ctx context.Context, logID int64) (*wiki.LogEntry, error) {
	return nil, wiki.ErrLogEntryNotFound
}

type stubFileRepo struct{}

func (stubFileRepo) FileURL(ctx context.Context, title string) (string, error) {
	return "", wiki.ErrFileNotFound
}

type recordingDeliverer struct {
	payloads []relay.WebhookPayload
}

func (d *recordingDeliverer) Send(ctx context.Context, payload relay.WebhookPayload) error {
	d.payloads = append(d.payloads, payload)
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *recordingDeliverer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	site := wiki.NewSite(config.WikiConfig{
		ServerURL:   "https://wiki.example.org",
		ArticlePath: "/wiki/$1",
		ScriptPath:  "/w",
	})
	formatter := relay.NewFormatter(site, stubLogStore{}, stubFileRepo{})
	deliverer := &recordingDeliverer{}

	svc, err := relay.NewService(config.RelayConfig{}, formatter, deliverer, logger.NopLogger())
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router, deliverer
}

func TestSubmitEvent_Accepted(t *testing.T) {
	router, deliverer := setupRouter(t)

	body := `{"id": 1, "type": "edit", "title": "Main Page", "user": "Alice",
		"length": {"old": 10, "new": 30}}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, deliverer.payloads, 1)
	assert.Equal(t, "Main Page", deliverer.payloads[0].Embeds[0].Title)
}

func TestSubmitEvent_FilteredStillAccepted(t *testing.T) {
	router, deliverer := setupRouter(t)

	// Ignored categories are a normal outcome, not a client error.
	body := `{"id": 2, "type": "categorize", "title": "Category:X", "user": "Bot"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, deliverer.payloads)
}

func TestSubmitEvent_MalformedJSON(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitEvent_MissingRequiredFields(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{"id": 3, "type": "edit"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitEvent_LogEntryGoneAccepted(t *testing.T) {
	router, deliverer := setupRouter(t)

	// The stub log store reports every entry as deleted; that skips the
	// event without failing the request.
	body := `{"id": 4, "type": "log", "title": "Old Page", "user": "Admin", "log_id": 77}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, deliverer.payloads)
}
