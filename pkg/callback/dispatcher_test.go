package callback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/models"
)

func testConfirmation() *models.Confirmation {
	return &models.Confirmation{
		ConfirmationID: "conf-1",
		IntentID:       "intent-abc",
		Status:         models.StatusCompleted,
	}
}

func TestDeliver(t *testing.T) {
	type received struct {
		contentType string
		version     string
		body        models.Confirmation
	}

	got := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var conf models.Confirmation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&conf))
		got <- received{
			contentType: r.Header.Get("Content-Type"),
			version:     r.Header.Get("X-AP2-Version"),
			body:        conf,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(time.Second, &logger.EmptyLogger{})
	d.Deliver(server.URL, testConfirmation())

	select {
	case r := <-got:
		assert.Equal(t, "application/json", r.contentType)
		assert.Equal(t, "1.0", r.version)
		assert.Equal(t, "intent-abc", r.body.IntentID)
		assert.Equal(t, models.StatusCompleted, r.body.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never delivered")
	}
}

func TestDeliverEndpointRejects(t *testing.T) {
	hits := make(chan struct{}, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher(time.Second, &logger.EmptyLogger{})
	// deliver runs synchronously here so the attempt count is exact.
	d.deliver(server.URL, testConfirmation())

	// Single attempt: a rejection is final.
	assert.Len(t, hits, 1)
}

func TestDeliverUnreachableEndpoint(t *testing.T) {
	d := NewDispatcher(100*time.Millisecond, &logger.EmptyLogger{})
	// Must not panic or block; the outcome is only logged and counted.
	d.deliver("http://127.0.0.1:1/callbacks", testConfirmation())
}
