package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/XquisitoAI/xquisito-backend/internal/errs"
)

// Ensure Fake implements Gateway
var _ Gateway = (*Fake)(nil)

// Fake is an in-memory gateway for tests and local development. Every
// charge succeeds unless the test scripts a decline or outage first.
type Fake struct {
	mu      sync.Mutex
	seq     int
	decline string
	offline bool

	// Charges records every confirmed charge, in order.
	Charges []ChargeRequest
}

// NewFake creates a fake gateway that confirms everything.
func NewFake() *Fake {
	return &Fake{}
}

// DeclineNext makes the next charge fail with the given reason.
func (f *Fake) DeclineNext(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decline = reason
}

// SetOffline toggles simulated transport failures.
func (f *Fake) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// Charge confirms the request unless a decline or outage was scripted.
func (f *Fake) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline {
		return nil, errs.Network("payment provider unreachable", nil)
	}
	if f.decline != "" {
		reason := f.decline
		f.decline = ""
		return nil, errs.GatewayDecline(reason)
	}

	f.seq++
	f.Charges = append(f.Charges, req)
	return &ChargeResult{
		ChargeID:  fmt.Sprintf("ch_fake_%04d", f.seq),
		Confirmed: true,
	}, nil
}
