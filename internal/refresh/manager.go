package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// Manager runs one Refresher per watched user and fans its reports out to subscribers.
// A user's refresher starts with the first subscriber and stops with the last.
type Manager struct {
	ctx      context.Context
	builder  Builder
	feed     Feed
	interval time.Duration
	log      logrus.FieldLogger

	mu       sync.Mutex
	nextID   int
	watchers map[string]*watcher
}

type watcher struct {
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan *models.Report
	last    *models.Report
	stopped bool
}

// NewManager creates a Manager whose refreshers live at most as long as ctx
func NewManager(ctx context.Context, builder Builder, feed Feed, interval time.Duration, log logrus.FieldLogger) *Manager {
	return &Manager{
		ctx:      ctx,
		builder:  builder,
		feed:     feed,
		interval: interval,
		log:      log,
		watchers: make(map[string]*watcher),
	}
}

// Subscribe returns a channel of the user's refreshed reports. The channel holds only the
// latest undelivered report. The returned function unsubscribes and closes the channel.
func (m *Manager) Subscribe(userID string) (<-chan *models.Report, func()) {
	ch := make(chan *models.Report, 1)

	m.mu.Lock()
	w, ok := m.watchers[userID]
	if !ok {
		w = m.startLocked(userID)
	}
	id := m.nextID
	m.nextID++
	w.subs[id] = ch
	if w.last != nil {
		ch <- w.last
	}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { m.unsubscribe(userID, w, id) })
	}
}

func (m *Manager) startLocked(userID string) *watcher {
	ctx, cancel := context.WithCancel(m.ctx)
	w := &watcher{
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[int]chan *models.Report),
	}
	m.watchers[userID] = w

	r := NewRefresher(userID, m.builder, m.feed, m.interval, func(report *models.Report) {
		m.broadcast(w, report)
	}, m.log)
	go func() {
		defer close(w.done)
		r.Run(ctx)
	}()

	m.log.WithField("user_id", userID).Info("Started refresher")
	return w
}

func (m *Manager) broadcast(w *watcher, report *models.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.stopped {
		return
	}
	w.last = report
	for _, ch := range w.subs {
		// keep only the newest report for slow readers
		select {
		case ch <- report:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- report:
			default:
			}
		}
	}
}

func (m *Manager) unsubscribe(userID string, w *watcher, id int) {
	m.mu.Lock()
	if ch, ok := w.subs[id]; ok {
		delete(w.subs, id)
		close(ch)
	}
	last := len(w.subs) == 0 && !w.stopped
	if last {
		w.stopped = true
		if m.watchers[userID] == w {
			delete(m.watchers, userID)
		}
	}
	m.mu.Unlock()

	if last {
		w.cancel()
		<-w.done
		m.log.WithField("user_id", userID).Info("Stopped refresher")
	}
}

// Watching reports whether a refresher is running for the user
func (m *Manager) Watching(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watchers[userID]
	return ok
}

// Close stops every refresher and closes every subscriber channel
func (m *Manager) Close() {
	m.mu.Lock()
	watchers := m.watchers
	m.watchers = make(map[string]*watcher)
	for _, w := range watchers {
		w.stopped = true
		for id, ch := range w.subs {
			delete(w.subs, id)
			close(ch)
		}
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w.cancel()
		<-w.done
	}
}
