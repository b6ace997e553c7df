package callback

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
	"github.com/ap2stellar/gateway/pkg/models"
)

const (
	versionHeader   = "X-AP2-Version"
	protocolVersion = "1.0"

	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 5 * time.Second
)

// Dispatcher delivers confirmations to caller-supplied endpoints.
// Delivery is best effort and single attempt: the settlement response
// never waits on it and the outcome is only logged and counted.
type Dispatcher struct {
	client *http.Client
	log    logger.Logger
}

// NewDispatcher creates a dispatcher with the given per-attempt timeout.
func NewDispatcher(timeout time.Duration, log logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Deliver posts the confirmation to url on a detached goroutine.
func (d *Dispatcher) Deliver(url string, conf *models.Confirmation) {
	go d.deliver(url, conf)
}

func (d *Dispatcher) deliver(url string, conf *models.Confirmation) {
	body, err := json.Marshal(conf)
	if err != nil {
		d.log.ErrorWithComponent(logger.Callback, "failed to encode confirmation %s: %v", conf.ConfirmationID, err)
		metrics.CallbackDeliveries.WithLabelValues("encode_error").Inc()
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.log.ErrorWithComponent(logger.Callback, "invalid callback url for intent %s: %v", conf.IntentID, err)
		metrics.CallbackDeliveries.WithLabelValues("bad_url").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(versionHeader, protocolVersion)

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.ErrorWithComponent(logger.Callback, "delivery to %s failed for intent %s: %v", url, conf.IntentID, err)
		metrics.CallbackDeliveries.WithLabelValues("error").Inc()
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		d.log.NoticeWithComponent(logger.Callback, "endpoint %s answered %d for intent %s", url, resp.StatusCode, conf.IntentID)
		metrics.CallbackDeliveries.WithLabelValues("rejected").Inc()
		return
	}

	d.log.DebugWithComponent(logger.Callback, "confirmation %s delivered to %s", conf.ConfirmationID, url)
	metrics.CallbackDeliveries.WithLabelValues("delivered").Inc()
}
