package event

import (
	"fmt"
	"log"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Result is a listener's verdict. Only cancelable dispatch looks at it.
type Result int

const (
	Continue Result = iota
	Cancel
)

type Listener func(Event) Result

// ID identifies one registration.
type ID uint64

type entry struct {
	id ID
	fn Listener
}

// Hub dispatches events to listeners in registration order. It is not safe
// for concurrent use; the engine drives it from a single goroutine.
type Hub struct {
	listeners map[Kind][]entry
	next      ID
	logger    *log.Logger
	metrics   *hubMetrics
}

type hubMetrics struct {
	dispatched *prometheus.CounterVec
	panics     *prometheus.CounterVec
	canceled   *prometheus.CounterVec
}

func newHubMetrics(reg prometheus.Registerer) *hubMetrics {
	m := &hubMetrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "systematic",
			Subsystem: "event",
			Name:      "dispatched_total",
			Help:      "Events dispatched, by mode.",
		}, []string{"mode"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "systematic",
			Subsystem: "event",
			Name:      "listener_panics_total",
			Help:      "Listener panics recovered during dispatch.",
		}, []string{"event"}),
		canceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "systematic",
			Subsystem: "event",
			Name:      "canceled_total",
			Help:      "Cancelable dispatches vetoed by a listener.",
		}, []string{"event"}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatched, m.panics, m.canceled)
	}
	return m
}

// NewHub returns an empty hub. logger defaults to log.Default(); reg may be
// nil to skip metric registration.
func NewHub(logger *log.Logger, reg prometheus.Registerer) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		listeners: make(map[Kind][]entry),
		logger:    logger,
		metrics:   newHubMetrics(reg),
	}
}

// On appends fn to the listeners of kind and returns its handle and an
// unregister func. A nil fn or empty kind panics.
func (h *Hub) On(kind Kind, fn Listener) (ID, func()) {
	if kind == "" {
		panic("event: On with empty kind")
	}
	if fn == nil {
		panic(fmt.Sprintf("event: On(%s) with nil listener", kind))
	}
	h.next++
	id := h.next
	h.listeners[kind] = append(h.listeners[kind], entry{id: id, fn: fn})
	return id, func() { h.Off(kind, id) }
}

// Off removes the registration id from kind. Unknown handles are ignored.
func (h *Hub) Off(kind Kind, id ID) bool {
	list := h.listeners[kind]
	i := slices.IndexFunc(list, func(e entry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	h.listeners[kind] = slices.Delete(slices.Clone(list), i, i+1)
	if len(h.listeners[kind]) == 0 {
		delete(h.listeners, kind)
	}
	return true
}

// Count returns the number of listeners registered for kind.
func (h *Hub) Count(kind Kind) int {
	return len(h.listeners[kind])
}

// Trigger calls every listener of ev's kind. Results are ignored; a panicking
// listener is logged and the rest still run.
func (h *Hub) Trigger(ev Event) {
	if h == nil || ev == nil {
		return
	}
	list := h.listeners[ev.Kind()]
	h.metrics.dispatched.WithLabelValues("notify").Inc()
	for _, e := range list {
		h.call(e, ev)
	}
}

// TriggerCancelable calls listeners in order until one returns Cancel. It
// reports whether the default action should proceed. A panicking listener
// counts as Continue.
func (h *Hub) TriggerCancelable(ev Event) bool {
	if h == nil || ev == nil {
		return true
	}
	list := h.listeners[ev.Kind()]
	h.metrics.dispatched.WithLabelValues("cancelable").Inc()
	for _, e := range list {
		if h.call(e, ev) == Cancel {
			h.metrics.canceled.WithLabelValues(string(ev.Kind())).Inc()
			return false
		}
	}
	return true
}

func (h *Hub) call(e entry, ev Event) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			h.metrics.panics.WithLabelValues(string(ev.Kind())).Inc()
			h.logger.Printf("event: listener %d for %s panicked: %v", e.id, ev.Kind(), r)
			res = Continue
		}
	}()
	return e.fn(ev)
}
