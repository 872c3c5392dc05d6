package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests and SLA scans.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	scansRun      int64
	slaWarnings   int64
	slaBreaches   int64
	scanFailures  int64
	lastScanTime  time.Time
	lastScanTotal int
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordScan records the outcome of an SLA scan pass.
func (m *Metrics) RecordScan(at time.Time, warnings, breaches, failures int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scansRun++
	m.slaWarnings += int64(warnings)
	m.slaBreaches += int64(breaches)
	m.scanFailures += int64(failures)
	m.lastScanTime = at
	m.lastScanTotal = warnings + breaches
}

// ScanTotals returns cumulative scan counters.
func (m *Metrics) ScanTotals() (scans, warnings, breaches, failures int64) {
	if m == nil {
		return 0, 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scansRun, m.slaWarnings, m.slaBreaches, m.scanFailures
}
