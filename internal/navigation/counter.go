package navigation

import (
	"sync"
	"time"
)

// State is a snapshot of the navigation counters.
type State struct {
	Loaded         bool      `json:"loaded"` // false until a balance is known
	Robux          int64     `json:"robux"`
	RobuxText      string    `json:"robux_text"`
	BalanceText    string    `json:"balance_text"`
	DevexText      string    `json:"devex_text,omitempty"`
	DevexVisible   bool      `json:"devex_visible"`
	FriendRequests int64     `json:"friend_requests"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Counter holds the rendered navigation state. Safe for concurrent use.
type Counter struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{now: time.Now}
}

// State returns a copy of the current state.
func (c *Counter) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Robux returns the last known balance and whether one is known.
func (c *Counter) Robux() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Robux, c.state.Loaded
}

// Render stores count and its texts. The DevEx text is only kept while
// withDevex is set.
func (c *Counter) Render(count int64, threshold float64, withDevex bool) {
	robuxText := FormatRobux(count, threshold)
	balanceText := FormatBalance(count)
	devexText := ""
	if withDevex {
		devexText = FormatDevex(count)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loaded = true
	c.state.Robux = count
	c.state.RobuxText = robuxText
	c.state.BalanceText = balanceText
	c.state.DevexText = devexText
	c.state.UpdatedAt = c.now()
}

// SetDevexVisible shows or hides the DevEx estimate.
func (c *Counter) SetDevexVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DevexVisible = visible
}

// SetFriendRequests stores the friend-request bubble count.
func (c *Counter) SetFriendRequests(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.FriendRequests = count
	c.state.UpdatedAt = c.now()
}
