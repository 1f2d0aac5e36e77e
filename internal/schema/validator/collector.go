package validator

// errorCollector is a bounded accumulator: it appends messages until the cap
// is reached, then appends a single terminal sentinel and drops everything
// after. This keeps worst-case validation cost bounded on large batches.
type errorCollector struct {
	errs     []string
	limit    int
	sentinel string
	closed   bool
}

func newErrorCollector(limit int, sentinel string) *errorCollector {
	return &errorCollector{limit: limit, sentinel: sentinel}
}

// add records a message. It returns false once the collector is full, at
// which point the sentinel has been appended and further messages are lost.
func (c *errorCollector) add(msg string) bool {
	if c.closed {
		return false
	}
	if len(c.errs) >= c.limit {
		c.errs = append(c.errs, c.sentinel)
		c.closed = true
		return false
	}
	c.errs = append(c.errs, msg)
	return true
}

func (c *errorCollector) full() bool {
	return c.closed
}

func (c *errorCollector) errors() []string {
	return c.errs
}
