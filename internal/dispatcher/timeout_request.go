package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"go-antiraid/internal/logging"
	"go-antiraid/internal/models"
)

const routeMemberTimeout = "member_timeout"

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	Route  string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: status %d: %s", e.Route, e.Status, e.Body)
}

// Permanent reports whether retrying cannot help. Client errors are final
// except 429.
func (e *APIError) Permanent() bool {
	return e.Status >= 400 && e.Status < 500 && e.Status != fasthttp.StatusTooManyRequests
}

type TimeoutExecutorConfig struct {
	Token          string
	BaseURL        string
	RequestTimeout time.Duration
}

// TimeoutExecutor applies member timeouts through the REST API.
type TimeoutExecutor struct {
	httpPool       *HTTPPool
	rateLimiter    *RateLimitMonitor
	token          string
	baseURL        string
	requestTimeout time.Duration
	now            func() time.Time
}

func NewTimeoutExecutor(httpPool *HTTPPool, rateLimiter *RateLimitMonitor, cfg TimeoutExecutorConfig) *TimeoutExecutor {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://discord.com/api/v10"
	}
	return &TimeoutExecutor{
		httpPool:       httpPool,
		rateLimiter:    rateLimiter,
		token:          cfg.Token,
		baseURL:        cfg.BaseURL,
		requestTimeout: cfg.RequestTimeout,
		now:            time.Now,
	}
}

type timeoutPayload struct {
	CommunicationDisabledUntil string `json:"communication_disabled_until"`
}

// ApplyTimeout disables the member's communication until now + duration.
func (te *TimeoutExecutor) ApplyTimeout(ctx context.Context, action *models.SanctionAction) error {
	if err := te.rateLimiter.WaitBucket(ctx, routeMemberTimeout, action.GuildID); err != nil {
		return err
	}
	if err := te.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	startTime := time.Now()
	until := te.now().Add(action.Duration()).UTC()

	body, err := json.Marshal(timeoutPayload{CommunicationDisabledUntil: until.Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("failed to encode timeout payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/guilds/%s/members/%s", te.baseURL, action.GuildID, action.ActorID))
	req.Header.SetMethod(fasthttp.MethodPatch)
	req.Header.Set("Authorization", "Bot "+te.token)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Audit-Log-Reason", url.PathEscape(action.Reason))
	req.SetBody(body)

	timeout := te.requestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	if err := te.httpPool.GetClient().DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("timeout request for %s: %w", action.ActorID, err)
	}

	te.rateLimiter.UpdateFromFastHTTPResponse(resp, routeMemberTimeout, action.GuildID)

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		logging.Info("[TIMEOUT APPLIED] User: %s | Guild: %s | Until: %s | Took: %s",
			action.ActorID, action.GuildID, until.Format(time.RFC3339), logging.Since(startTime))
		return nil
	}

	return &APIError{Route: routeMemberTimeout, Status: status, Body: string(resp.Body())}
}
