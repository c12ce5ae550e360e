package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fdpg_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubTrigger struct {
	calls int
	err   error
}

func (s *stubTrigger) EnqueueLocationSync(context.Context) error {
	s.calls++
	return s.err
}

func syncEngine(trigger SyncTrigger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, validator.New(), trigger)
	engine := gin.New()
	engine.POST("/locations/sync", h.TriggerSync)
	return engine
}

func postSync(engine *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/locations/sync", nil))
	return rec
}

func TestTriggerSyncQueuesTask(t *testing.T) {
	trigger := &stubTrigger{}

	rec := postSync(syncEngine(trigger))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":true}`, rec.Body.String())
	assert.Equal(t, 1, trigger.calls)
}

func TestTriggerSyncWithoutQueue(t *testing.T) {
	rec := postSync(syncEngine(nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSyncDisabled)
}

func TestTriggerSyncReportsQueueFailure(t *testing.T) {
	trigger := &stubTrigger{err: errors.New("redis unavailable")}

	rec := postSync(syncEngine(trigger))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis unavailable")
}
