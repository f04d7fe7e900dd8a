// Package stats exposes the chat core's operational counters over
// expvar. Metrics are typed at registration: gauges move both ways
// (connections, online users), counters only ever increase (messages
// persisted, denials, drops).
package stats

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const varsName = "reelchat-stats"

type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterCounter(name string)
	RegisterGauge(name string)
}

type metricKind int

const (
	counterKind metricKind = iota
	gaugeKind
)

type StatsUpdater struct {
	vars  *expvar.Map
	mu    sync.RWMutex
	kinds map[string]metricKind
}

func NewStatsUpdater(mux *http.ServeMux) *StatsUpdater {
	su := &StatsUpdater{
		vars:  statsMap(),
		kinds: make(map[string]metricKind),
	}

	start := time.Now()
	su.vars.Set("UptimeSeconds", expvar.Func(func() any {
		return int64(time.Since(start).Seconds())
	}))

	mux.Handle("GET /debug/vars", http.HandlerFunc(su.expvarHandler))

	return su
}

// statsMap reuses the published map when it already exists, so
// constructing a second updater in the same process (tests, mainly)
// does not trip expvar's duplicate-name panic.
func statsMap() *expvar.Map {
	if v := expvar.Get(varsName); v != nil {
		m := v.(*expvar.Map)
		m.Init()
		return m
	}

	return expvar.NewMap(varsName)
}

func (su *StatsUpdater) expvarHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	expvarData := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		expvarData[kv.Key] = value
	})

	json.NewEncoder(w).Encode(expvarData)
}

func (su *StatsUpdater) RegisterCounter(name string) {
	su.register(name, counterKind)
}

func (su *StatsUpdater) RegisterGauge(name string) {
	su.register(name, gaugeKind)
}

func (su *StatsUpdater) register(name string, kind metricKind) {
	su.mu.Lock()
	defer su.mu.Unlock()

	su.kinds[name] = kind
	su.vars.Set(name, new(expvar.Int))
}

func (su *StatsUpdater) Incr(name string) {
	su.add(name, 1)
}

func (su *StatsUpdater) Decr(name string) {
	su.mu.RLock()
	kind, ok := su.kinds[name]
	su.mu.RUnlock()
	if ok && kind == counterKind {
		panic(fmt.Sprintf("stats: counter %q cannot decrease", name))
	}

	su.add(name, -1)
}

func (su *StatsUpdater) add(name string, delta int64) {
	metric := su.vars.Get(name)
	if metric == nil {
		panic("stats: metric not registered: " + name)
	}

	metric.(*expvar.Int).Add(delta)
}
