package diag

import (
	"sync"
	"time"

	mstats "github.com/montanaflynn/stats"

	"mfsd/internal/mfs"
)

// minutePoint is an aggregated per-minute counter, mirrored from the
// teacher's admin dashboard stats.
type minutePoint struct {
	MinuteUnix int64  `json:"minute_unix"`
	Requests   uint64 `json:"requests"`
	Errors     uint64 `json:"errors"`
	BytesIn    uint64 `json:"bytes_in"`
	BytesOut   uint64 `json:"bytes_out"`
}

// StatsSnapshot is a JSON-friendly snapshot of collected statistics,
// per SPEC_FULL.md §3.
type StatsSnapshot struct {
	StartedUnix int64             `json:"started_unix"`
	NowUnix     int64             `json:"now_unix"`
	UptimeSec   int64             `json:"uptime_sec"`
	TotalReq    uint64            `json:"total_requests"`
	TotalErr    uint64            `json:"total_errors"`
	BytesIn     uint64            `json:"bytes_in"`
	BytesOut    uint64            `json:"bytes_out"`
	P50Ms       float64           `json:"p50_ms"`
	P90Ms       float64           `json:"p90_ms"`
	P99Ms       float64           `json:"p99_ms"`
	ByOp        map[string]uint64 `json:"by_op"`
	Recent      []minutePoint     `json:"recent"`
}

const latencyWindow = 4096

// statsHub keeps rolling totals, a per-minute ring for the last hour, and
// a bounded window of recent latencies for percentile estimates.
type statsHub struct {
	mu sync.Mutex

	started time.Time

	totalReq uint64
	totalErr uint64
	bytesIn  uint64
	bytesOut uint64

	byOp [256]uint64

	curMin  int64
	idx     int
	minUnix [60]int64
	req     [60]uint64
	err     [60]uint64
	in      [60]uint64
	out     [60]uint64

	latenciesMs []float64
	latPos      int
}

func newStatsHub() *statsHub {
	now := time.Now()
	m := now.Unix() / 60
	h := &statsHub{started: now, curMin: m, latenciesMs: make([]float64, 0, latencyWindow)}
	h.minUnix[0] = m * 60
	return h
}

func (h *statsHub) advanceLocked(targetMin int64) {
	for h.curMin < targetMin {
		h.curMin++
		h.idx = (h.idx + 1) % len(h.req)
		h.minUnix[h.idx] = h.curMin * 60
		h.req[h.idx] = 0
		h.err[h.idx] = 0
		h.in[h.idx] = 0
		h.out[h.idx] = 0
	}
}

func (h *statsHub) add(ev mfs.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	nowMin := time.Now().Unix() / 60
	h.advanceLocked(nowMin)

	h.totalReq++
	h.byOp[ev.Op]++
	h.req[h.idx]++

	if ev.ErrorCode != 0 {
		h.totalErr++
		h.err[h.idx]++
	}
	if ev.ReqBytes > 0 {
		h.bytesIn += uint64(ev.ReqBytes)
		h.in[h.idx] += uint64(ev.ReqBytes)
	}
	if ev.RespBytes > 0 {
		h.bytesOut += uint64(ev.RespBytes)
		h.out[h.idx] += uint64(ev.RespBytes)
	}

	if len(h.latenciesMs) < latencyWindow {
		h.latenciesMs = append(h.latenciesMs, float64(ev.DurationMs))
	} else {
		h.latenciesMs[h.latPos] = float64(ev.DurationMs)
		h.latPos = (h.latPos + 1) % latencyWindow
	}
}

func (h *statsHub) snapshot() StatsSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.advanceLocked(now.Unix() / 60)

	by := make(map[string]uint64)
	for i, c := range h.byOp {
		if c == 0 {
			continue
		}
		by[opName(byte(i))] += c
	}

	recent := make([]minutePoint, 0, len(h.req))
	n := len(h.req)
	for i := 0; i < n; i++ {
		j := (h.idx + 1 + i) % n
		if h.minUnix[j] == 0 {
			continue
		}
		recent = append(recent, minutePoint{
			MinuteUnix: h.minUnix[j],
			Requests:   h.req[j],
			Errors:     h.err[j],
			BytesIn:    h.in[j],
			BytesOut:   h.out[j],
		})
	}

	p50, _ := mstats.Percentile(h.latenciesMs, 50)
	p90, _ := mstats.Percentile(h.latenciesMs, 90)
	p99, _ := mstats.Percentile(h.latenciesMs, 99)

	return StatsSnapshot{
		StartedUnix: h.started.Unix(),
		NowUnix:     now.Unix(),
		UptimeSec:   int64(now.Sub(h.started).Seconds()),
		TotalReq:    h.totalReq,
		TotalErr:    h.totalErr,
		BytesIn:     h.bytesIn,
		BytesOut:    h.bytesOut,
		P50Ms:       p50,
		P90Ms:       p90,
		P99Ms:       p99,
		ByOp:        by,
		Recent:      recent,
	}
}
