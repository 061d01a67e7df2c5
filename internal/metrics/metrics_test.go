package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCounters(t *testing.T) {
	StatusTransitions.WithLabelValues("picked_up", "activity").Inc()
	Notifications.WithLabelValues("comment_added", "pushed").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `creative_tasks_status_transitions_total{source="activity",status="picked_up"}`)
	assert.Contains(t, string(body), `creative_tasks_notifications_total{result="pushed",type="comment_added"}`)
}
