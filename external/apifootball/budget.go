package apifootball

import (
	"strconv"
	"strings"
	"sync"
)

// RequestBudget tracks the provider's daily request allowance for one
// client. It starts from the configured daily limit and follows the
// provider's own rate-limit header once responses arrive.
type RequestBudget struct {
	mu        sync.Mutex
	remaining int
	made      int
	failed    int
}

func NewRequestBudget(daily int) *RequestBudget {
	return &RequestBudget{remaining: daily}
}

func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

func (b *RequestBudget) Made() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.made
}

func (b *RequestBudget) Failed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

func (b *RequestBudget) Set(remaining int) {
	b.mu.Lock()
	b.remaining = max(remaining, 0)
	b.mu.Unlock()
}

// observe accounts one answered request. The header value wins when it
// parses; otherwise the budget is decremented.
func (b *RequestBudget) observe(header string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.made++
	if v, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		b.remaining = max(v, 0)
		return
	}
	if b.remaining > 0 {
		b.remaining--
	}
}

func (b *RequestBudget) recordFailure() {
	b.mu.Lock()
	b.failed++
	b.mu.Unlock()
}
