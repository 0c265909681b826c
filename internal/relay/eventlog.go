package relay

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/lanarena/relay/internal/observability"
)

// Event buffer/rate tuning for a relay's combat/lifecycle audit trail.
const (
	eventBufferSize      = 1024
	maxEventsPerSec      = 10000
	maxEventsPerPeer     = 200
	batchFlushSize       = 64
	batchFlushInterval   = 100 * time.Millisecond
	peerLimiterCleanup   = 5 * time.Minute
)

// EventType enumerates the kinds of event the log records: wire-protocol
// message types plus room-lifecycle bookkeeping the wire protocol itself
// doesn't carry.
type EventType string

const (
	EventRoomCreated EventType = "roomCreated"
	EventRoomClosed  EventType = "roomClosed"
	EventPeerJoined  EventType = "peerJoined"
	EventPeerLeft    EventType = "peerLeft"
	EventKill        EventType = "kill"
	EventRoundResult EventType = "roundResult"
	EventMatchOver   EventType = "matchOver"
)

// Event is one audit-log row, newline-delimited JSON on disk.
type Event struct {
	Sequence  uint64          `json:"sequence"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // unix ms
	RoomID    string          `json:"roomId"`
	PeerID    string          `json:"peerId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func newEvent(t EventType, roomID, peerID string, payload any) Event {
	raw, _ := json.Marshal(payload)
	return Event{Type: t, Timestamp: time.Now().UnixMilli(), RoomID: roomID, PeerID: peerID, Payload: raw}
}

type peerLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// EventLog is a bounded, rate-limited circular buffer with async batched
// disk flush: lock-free SPSC index arithmetic, a global + per-peer
// limiter split, and a drop-oldest backpressure policy under sustained
// overload.
type EventLog struct {
	buffer    [eventBufferSize]Event
	writeHead uint64
	readHead  uint64

	globalLimiter *rate.Limiter
	peerLimiters  sync.Map // map[string]*peerLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64
	totalCount   uint64
}

// NewEventLog returns an EventLog not yet started.
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(maxEventsPerSec, maxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens filePath (creating/appending) and begins the writer and
// cleanup goroutines. An empty filePath disables disk output while still
// exercising the buffer and rate limits (useful for tests).
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	el.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}
	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes any pending batch and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()
		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit records an event, applying global and per-peer rate limits and
// reporting whether it was accepted (false means rate-limited or the log
// isn't running; it is never a caller error to ignore the return value).
func (el *EventLog) Emit(t EventType, roomID, peerID string, payload any) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		observability.RecordEventDropped()
		return false
	}
	if peerID != "" {
		if !el.getPeerLimiter(peerID).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			observability.RecordEventDropped()
			return false
		}
	}

	event := newEvent(t, roomID, peerID, payload)

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)
	if head-tail >= eventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
		observability.RecordEventDropped()
	}

	event.Sequence = head
	el.buffer[head%eventBufferSize] = event
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

func (el *EventLog) getPeerLimiter(peerID string) *rate.Limiter {
	if entry, ok := el.peerLimiters.Load(peerID); ok {
		e := entry.(*peerLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}
	entry := &peerLimiterEntry{
		limiter:  rate.NewLimiter(maxEventsPerPeer, maxEventsPerPeer/10),
		lastUsed: time.Now(),
	}
	actual, _ := el.peerLimiters.LoadOrStore(peerID, entry)
	return actual.(*peerLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)
	for {
		select {
		case <-el.stopChan:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
			return
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(peerLimiterCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-peerLimiterCleanup)
			el.peerLimiters.Range(func(key, value interface{}) bool {
				if value.(*peerLimiterEntry).lastUsed.Before(cutoff) {
					el.peerLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)
	for i := tail; i < head && len(batch) < batchFlushSize; i++ {
		batch = append(batch, el.buffer[i%eventBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}
	return batch
}

func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()
	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(data)
		el.file.Write([]byte("\n"))
	}
}

// DroppedCount returns the number of events dropped to backpressure.
func (el *EventLog) DroppedCount() uint64 { return atomic.LoadUint64(&el.droppedCount) }

// TotalCount returns the number of events accepted.
func (el *EventLog) TotalCount() uint64 { return atomic.LoadUint64(&el.totalCount) }
