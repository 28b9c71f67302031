package dispatcher

import (
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"

	"go-antiraid/internal/logging"
)

type HTTPPoolConfig struct {
	Size int
	// Dial overrides the network dialer, mainly for in-memory listeners.
	Dial fasthttp.DialFunc
}

// HTTPPool hands out fasthttp clients round-robin.
type HTTPPool struct {
	clients []*fasthttp.Client
	next    atomic.Uint32
}

func NewHTTPPool(cfg HTTPPoolConfig) *HTTPPool {
	if cfg.Size <= 0 {
		cfg.Size = 4
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
	}

	clients := make([]*fasthttp.Client, cfg.Size)
	for i := range clients {
		clients[i] = &fasthttp.Client{
			MaxConnsPerHost:     256,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         2 * time.Second,
			WriteTimeout:        2 * time.Second,
			MaxConnWaitTimeout:  500 * time.Millisecond,
			MaxResponseBodySize: 1 << 20,

			// retries are owned by the worker's backoff policy
			MaxIdemponentCallAttempts: 1,

			DialDualStack:            true,
			TLSConfig:                tlsConfig,
			NoDefaultUserAgentHeader: true,
			Dial:                     cfg.Dial,
		}
	}

	return &HTTPPool{clients: clients}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	idx := hp.next.Add(1) - 1
	return hp.clients[int(idx)%len(hp.clients)]
}

func (hp *HTTPPool) Size() int {
	return len(hp.clients)
}

// Warmup opens a connection to the API so the first timeout does not pay for
// the TLS handshake. Failures are only logged.
func (hp *HTTPPool) Warmup(baseURL string) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(baseURL + "/gateway")
	req.Header.SetMethod(fasthttp.MethodGet)

	start := time.Now()
	if err := hp.clients[0].DoTimeout(req, resp, 2*time.Second); err != nil {
		logging.Warn("HTTP pool warmup failed: %v", err)
		return
	}
	logging.Debug("HTTP pool warmed up in %s (status %d)", logging.Since(start), resp.StatusCode())
}
