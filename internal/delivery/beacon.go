package delivery

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// BeaconTimeout is deliberately short; a beacon fires during teardown and
// must never hold up shutdown.
const BeaconTimeout = 2 * time.Second

// Beacon sends a final snapshot during page teardown. Failures are logged
// and otherwise ignored; by the time a beacon fires there is nobody left
// to retry.
type Beacon struct {
	endpoint string
	token    string
	client   *fasthttp.Client
	timeout  time.Duration
	logger   *zap.Logger
}

// NewBeacon constructs a Beacon for the given endpoint.
func NewBeacon(logger *zap.Logger, endpoint, token string) *Beacon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Beacon{
		endpoint: endpoint,
		token:    token,
		client:   &fasthttp.Client{},
		timeout:  BeaconTimeout,
		logger:   logger,
	}
}

// Send fires the payload at the collector and reports, but does not act on,
// any failure.
func (b *Beacon) Send(payload []byte) {
	if b.endpoint == "" {
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(b.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	req.SetBody(payload)

	if err := b.client.DoTimeout(req, resp, b.timeout); err != nil {
		b.logger.Debug("beacon delivery failed",
			zap.String("op", "delivery.Beacon.Send"),
			zap.Error(err),
		)
		return
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		b.logger.Debug("beacon rejected by collector",
			zap.String("op", "delivery.Beacon.Send"),
			zap.Int("status", code),
		)
	}
}
