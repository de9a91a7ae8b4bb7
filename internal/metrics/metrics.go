package metrics

import "sync/atomic"

type Counters struct {
	PaymentsInitiated uint64
	CallbacksReceived uint64
	HashMismatches    uint64
	TerminalConflicts uint64
	SweepsRun         uint64
	TransactionsSwept uint64
	SweepRowFailures  uint64
}

func (c *Counters) IncInitiated() {
	atomic.AddUint64(&c.PaymentsInitiated, 1)
}

func (c *Counters) IncCallback() {
	atomic.AddUint64(&c.CallbacksReceived, 1)
}

func (c *Counters) IncHashMismatch() {
	atomic.AddUint64(&c.HashMismatches, 1)
}

func (c *Counters) IncTerminalConflict() {
	atomic.AddUint64(&c.TerminalConflicts, 1)
}

func (c *Counters) IncSweep() {
	atomic.AddUint64(&c.SweepsRun, 1)
}

func (c *Counters) AddSwept(n int) {
	atomic.AddUint64(&c.TransactionsSwept, uint64(n))
}

func (c *Counters) AddSweepFailures(n int) {
	atomic.AddUint64(&c.SweepRowFailures, uint64(n))
}
