// Package client provides the API client used by rplusctl to talk to rplusd.
//
// API CLIENT ARCHITECTURE:
// RplusAPIClient wraps a Resty client configured for the daemon's local API:
//   - Connection Management: per-command timeout and retries on connection errors
//   - Envelope Handling: success bodies carry {"status","data","count"}, failures
//     carry {"error","details"} and become an *APIError
//   - Logging: requests and responses go through the structured logger at DEBUG
//
// Response types are the daemon's own types, so the CLI and the API cannot
// drift apart silently.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/items"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/transactions"
)

// APIResponse is the envelope of every daemon response. Successful calls
// fill Status and Data; failed calls fill Error and Details.
type APIResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// APIError is returned when the daemon answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Message, e.Details, e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Health is the daemon liveness response.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// AboutTab is one tab of the about page.
type AboutTab struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// About describes the daemon and its about page tabs.
type About struct {
	Name     string     `json:"name"`
	Version  string     `json:"version"`
	Tabs     []AboutTab `json:"tabs"`
	Selected AboutTab   `json:"selected"`
}

// PresenceMetrics holds the coalescer counters and configuration.
type PresenceMetrics struct {
	Metrics batching.Metrics `json:"metrics"`
	Config  batching.Config  `json:"config"`
}

// SalesResponse is the sales stat of one asset. Stat is nil when no stat
// applies to the asset.
type SalesResponse struct {
	AssetID int64       `json:"asset_id"`
	Stat    *items.Stat `json:"stat"`
}

// RplusAPIClient talks to the rplusd HTTP API.
type RplusAPIClient struct {
	client  *resty.Client
	baseURL string
}

// NewRplusAPIClient creates a client for the daemon at apiAddr (host:port).
func NewRplusAPIClient(apiAddr string, timeout int) *RplusAPIClient {
	client := resty.New()

	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client.SetLogger(logging.RestyLogger{Prefix: "rplusctl"})

	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("rplusctl/%s", config.Version))

	// Only retry on connection errors, not HTTP errors
	client.
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &RplusAPIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// CreateAPIClient creates a client from the global CLI configuration.
func CreateAPIClient() *RplusAPIClient {
	return NewRplusAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

// BaseURL returns the API root the client talks to.
func (api *RplusAPIClient) BaseURL() string {
	return api.baseURL
}

// call executes a request and decodes the envelope's data into out.
// It returns the envelope count for list endpoints.
func (api *RplusAPIClient) call(method, path string, body, out any) (int, error) {
	req := api.client.R()
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	var envelope APIResponse
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			return 0, fmt.Errorf("unexpected response from %s %s (status %d): %w",
				method, path, resp.StatusCode(), err)
		}
	}

	if !resp.IsSuccess() {
		message := envelope.Error
		if message == "" {
			message = fmt.Sprintf("API request failed with status %d", resp.StatusCode())
		}
		return 0, &APIError{StatusCode: resp.StatusCode(), Message: message, Details: envelope.Details}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return 0, fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return envelope.Count, nil
}

// getRaw fetches an endpoint that is not wrapped in the envelope.
func (api *RplusAPIClient) getRaw(path string, out any) error {
	resp, err := api.client.R().SetResult(out).Get(path)
	if err != nil {
		return fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("API request failed with status %d", resp.StatusCode())}
	}
	return nil
}

// GetHealth checks that the daemon is up.
func (api *RplusAPIClient) GetHealth() (*Health, error) {
	var health Health
	if err := api.getRaw("/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetAbout fetches the about page with tab selected ("" for the first tab).
func (api *RplusAPIClient) GetAbout(tab string) (*About, error) {
	path := "/about"
	if tab != "" {
		path += "?tab=" + url.QueryEscape(tab)
	}

	var about About
	if err := api.getRaw(path, &about); err != nil {
		return nil, err
	}
	return &about, nil
}

// GetPresences looks up every user in one request. The daemon coalesces the
// lookup with concurrent ones, so this may take up to the batching delay.
func (api *RplusAPIClient) GetPresences(userIDs []int64) (map[int64]presence.UserPresence, error) {
	results := make(map[int64]presence.UserPresence)
	body := map[string]any{"user_ids": userIDs}

	if _, err := api.call(http.MethodPost, "/presence", body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetPresenceMetrics fetches the coalescer counters.
func (api *RplusAPIClient) GetPresenceMetrics() (*PresenceMetrics, error) {
	var metrics PresenceMetrics
	if _, err := api.call(http.MethodGet, "/presence/metrics", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// GetNavigation fetches the rendered navbar counters.
func (api *RplusAPIClient) GetNavigation() (*navigation.State, error) {
	var state navigation.State
	if _, err := api.call(http.MethodGet, "/navigation", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// RefreshNavigation asks the daemon to refetch both counters now.
func (api *RplusAPIClient) RefreshNavigation() (*navigation.State, error) {
	var state navigation.State
	if _, err := api.call(http.MethodPost, "/navigation/refresh", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetSettings lists every setting with its current value.
func (api *RplusAPIClient) GetSettings() ([]settings.Entry, error) {
	var entries []settings.Entry
	if _, err := api.call(http.MethodGet, "/settings", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetSetting fetches one setting.
func (api *RplusAPIClient) GetSetting(key string) (*settings.Change, error) {
	var change settings.Change
	if _, err := api.call(http.MethodGet, "/settings/"+url.PathEscape(key), nil, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// SetSetting stores value under key. A nil value resets it to its default.
func (api *RplusAPIClient) SetSetting(key string, value any) (*settings.Change, error) {
	var change settings.Change
	body := map[string]any{"value": value}

	if _, err := api.call(http.MethodPut, "/settings/"+url.PathEscape(key), body, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// GetAssetSales fetches the sales stat of assetID.
func (api *RplusAPIClient) GetAssetSales(assetID int64) (*SalesResponse, error) {
	var response SalesResponse
	path := "/assets/" + strconv.FormatInt(assetID, 10) + "/sales"

	if _, err := api.call(http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SummarizeTransactions groups transactions by item on the daemon.
func (api *RplusAPIClient) SummarizeTransactions(list []transactions.Transaction) (*transactions.Summary, error) {
	var summary transactions.Summary
	if _, err := api.call(http.MethodPost, "/transactions/items", list, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetTasks lists the daemon's periodic tasks.
func (api *RplusAPIClient) GetTasks() ([]scheduler.TaskStats, error) {
	var tasks []scheduler.TaskStats
	if _, err := api.call(http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
