package model

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TimeControl is a starting budget per player plus an increment added after
// each of their moves. A zero Base means no clock.
type TimeControl struct {
	Name      string        `json:"name"`
	Base      time.Duration `json:"base"`
	Increment time.Duration `json:"increment"`
}

func (tc TimeControl) Unlimited() bool {
	return tc.Base <= 0
}

var (
	Bullet    = TimeControl{Name: "bullet", Base: time.Minute, Increment: time.Second}
	Blitz     = TimeControl{Name: "blitz", Base: 5 * time.Minute, Increment: 3 * time.Second}
	Rapid     = TimeControl{Name: "rapid", Base: 10 * time.Minute}
	Classical = TimeControl{Name: "classical", Base: 180 * time.Minute}
	Unlimited = TimeControl{Name: "unlimited"}
)

var timeControls = map[string]TimeControl{
	Bullet.Name:    Bullet,
	Blitz.Name:     Blitz,
	Rapid.Name:     Rapid,
	Classical.Name: Classical,
	Unlimited.Name: Unlimited,
}

func ParseTimeControl(name string) (TimeControl, error) {
	if tc, ok := timeControls[name]; ok {
		return tc, nil
	}
	names := make([]string, 0, len(timeControls))
	for n := range timeControls {
		names = append(names, n)
	}
	sort.Strings(names)
	return TimeControl{}, fmt.Errorf("invalid time control %q, want one of %v", name, names)
}

type Clock struct {
	mu          sync.Mutex
	timeLeft    time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
	unlimited   bool
	now         func() time.Time
}

func NewClock(initialTime time.Duration, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		timeLeft:  initialTime,
		unlimited: initialTime <= 0,
		now:       now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning && !c.unlimited {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.timeLeft -= c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) AddTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.unlimited {
		c.timeLeft += d
	}
}

// TimeLeft returns the remaining time and false when the clock is unlimited.
func (c *Clock) TimeLeft() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlimited {
		return 0, false
	}
	if c.isRunning {
		return c.timeLeft - c.now().Sub(c.lastStarted), true
	}
	return c.timeLeft, true
}

func (c *Clock) Expired() bool {
	left, limited := c.TimeLeft()
	return limited && left <= 0
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}
