package metrics

import (
	"time"

	"mediastream/internal/logging"
)

// HealthProvider reports whether each library root is reachable.
type HealthProvider interface {
	LibraryHealth() map[string]bool
}

// Collector periodically probes library roots and updates LibraryAvailable.
type Collector struct {
	provider HealthProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider HealthProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}

	health := c.provider.LibraryHealth()
	down := 0
	for id, ok := range health {
		value := 0.0
		if ok {
			value = 1
		} else {
			down++
		}
		LibraryAvailable.WithLabelValues(id).Set(value)
	}

	if down > 0 {
		logging.Warn("%d of %d library roots are unreachable", down, len(health))
	} else {
		logging.Debug("Library health collected: %d libraries reachable", len(health))
	}
}
