package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookHandler(t *testing.T) {
	b, tg := testBot(t)
	handler := b.WebhookHandler(context.Background())

	t.Run("RejectsGet", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("AcceptsUpdate", func(t *testing.T) {
		payload := `{"update_id":1,"message":{"message_id":1,"from":{"id":7},"chat":{"id":7},"text":"/start"}}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// The update is processed asynchronously.
		assert.Eventually(t, func() bool {
			return tg.sentCount() > 0
		}, time.Second, 10*time.Millisecond)
	})
}
