package retry

import "sync/atomic"

// Acquisition is the result of a successful Capacity.TryAcquire.
type Acquisition struct {
	// Acquired is the amount actually deducted (equal to the requested
	// amount; TryAcquire never partially grants).
	Acquired int
	// Remaining is current capacity immediately after the deduction.
	Remaining int
}

// Capacity is a process-local, bounded integer counter shared by every
// concurrent attempt of one client. It maintains 0 <= current <= max at
// every observable instant and is safe for concurrent use without a
// mutex: every mutation is a compare-and-swap loop over a single int64
// cell, per spec §4.1/§5 ("no mutexes", "wait-free in the uncontended
// case; under contention they retry").
type Capacity struct {
	max     int64
	current int64
}

// NewCapacity creates a Capacity starting full, i.e. current == max.
// max must be >= 0.
func NewCapacity(max int) *Capacity {
	if max < 0 {
		max = 0
	}
	return &Capacity{max: int64(max), current: int64(max)}
}

// TryAcquire attempts to deduct n from current. n == 0 always succeeds
// without mutation and reports the current value. A negative n is a
// programmer error. Insufficient capacity reports ok == false and
// leaves current unchanged.
func (c *Capacity) TryAcquire(n int) (acq Acquisition, ok bool, err error) {
	if n < 0 {
		return Acquisition{}, false, invalidArgument("capacity: negative acquire amount")
	}
	if n == 0 {
		return Acquisition{Acquired: 0, Remaining: int(atomic.LoadInt64(&c.current))}, true, nil
	}

	want := int64(n)
	for {
		cur := atomic.LoadInt64(&c.current)
		if cur-want < 0 {
			return Acquisition{}, false, nil
		}
		next := cur - want
		if atomic.CompareAndSwapInt64(&c.current, cur, next) {
			return Acquisition{Acquired: n, Remaining: int(next)}, true, nil
		}
		// Lost the race to a concurrent mutator; reread and retry.
	}
}

// Release returns n to the bucket, saturating at max. A negative n is a
// programmer error.
func (c *Capacity) Release(n int) error {
	if n < 0 {
		return invalidArgument("capacity: negative release amount")
	}
	if n == 0 {
		return nil
	}

	add := int64(n)
	for {
		cur := atomic.LoadInt64(&c.current)
		next := cur + add
		if next > c.max {
			next = c.max
		}
		if next == cur {
			return nil
		}
		if atomic.CompareAndSwapInt64(&c.current, cur, next) {
			return nil
		}
	}
}

// CurrentCapacity is an observational read of the current balance.
func (c *Capacity) CurrentCapacity() int {
	return int(atomic.LoadInt64(&c.current))
}

// MaxCapacity returns the bucket's ceiling.
func (c *Capacity) MaxCapacity() int {
	return int(c.max)
}
