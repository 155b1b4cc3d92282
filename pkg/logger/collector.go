package logger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Publisher ships a rolled-up report, typically to a Kafka topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectorConfig struct {
	Service       string
	Environment   string
	FlushInterval time.Duration
	MaxEntries    int // distinct entries before an early flush
	Topic         string
	Publisher     Publisher
}

type CollectedEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller"`
	Sample    map[string]interface{} `json:"sample_fields"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Report is one flush window of collected warn/error entries.
type Report struct {
	Service     string           `json:"service"`
	Environment string           `json:"environment"`
	WindowStart time.Time        `json:"window_start"`
	WindowEnd   time.Time        `json:"window_end"`
	Entries     []CollectedEntry `json:"entries"`
}

// Collector groups repeated entries by level, message and caller, keeping the first
// entry's fields as a sample.
type Collector struct {
	cfg         CollectorConfig
	mu          sync.Mutex
	entries     map[string]*CollectedEntry
	windowStart time.Time
	stop        chan struct{}
	once        sync.Once
	wg          sync.WaitGroup
}

func NewCollector(cfg CollectorConfig) *Collector {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Minute
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 500
	}
	c := &Collector{
		cfg:         cfg,
		entries:     make(map[string]*CollectedEntry),
		windowStart: time.Now(),
		stop:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *Collector) Add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := level + "|" + caller + "|" + message

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &CollectedEntry{
			Level:     level,
			Message:   message,
			Caller:    caller,
			Sample:    fields,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var report *Report
	if len(c.entries) >= c.cfg.MaxEntries {
		report = c.drainLocked(now)
	}
	c.mu.Unlock()

	if report != nil {
		go c.publish(report)
	}
}

func (c *Collector) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Flush()
		case <-c.stop:
			c.Flush()
			return
		}
	}
}

// Flush publishes collected entries synchronously.
func (c *Collector) Flush() {
	c.mu.Lock()
	report := c.drainLocked(time.Now())
	c.mu.Unlock()
	if report != nil {
		c.publish(report)
	}
}

func (c *Collector) drainLocked(now time.Time) *Report {
	if len(c.entries) == 0 {
		c.windowStart = now
		return nil
	}
	r := &Report{
		Service:     c.cfg.Service,
		Environment: c.cfg.Environment,
		WindowStart: c.windowStart,
		WindowEnd:   now,
		Entries:     make([]CollectedEntry, 0, len(c.entries)),
	}
	for _, e := range c.entries {
		r.Entries = append(r.Entries, *e)
	}
	sort.Slice(r.Entries, func(i, j int) bool { return r.Entries[i].Count > r.Entries[j].Count })
	c.entries = make(map[string]*CollectedEntry)
	c.windowStart = now
	return r
}

func (c *Collector) publish(r *Report) {
	if c.cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, r); err != nil {
		// the logger itself is the caller here, so report on stderr
		fmt.Fprintf(os.Stderr, "log collector: publish report: %v\n", err)
	}
}

func (c *Collector) Close() {
	c.once.Do(func() {
		close(c.stop)
		c.wg.Wait()
	})
}
