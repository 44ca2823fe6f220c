package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"mining-intel/internal/domain"
)

// WireConfig configures WireSource connection behavior.
type WireConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// Buffer is the capacity of the internal item buffer. When the
	// buffer is full the oldest unread items are dropped.
	Buffer int
}

// DefaultWireConfig returns default wire connection settings.
func DefaultWireConfig() WireConfig {
	return WireConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Buffer:            1024,
	}
}

// wireItem is a single newswire frame.
type wireItem struct {
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// WireSource consumes a push-based newswire over WebSocket. A background
// reader accumulates frames into an internal buffer; each Fetch call drains
// whatever has arrived since the previous call.
type WireSource struct {
	sourceID string
	endpoint string
	config   WireConfig
	logger   *log.Logger

	items  chan wireItem
	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewWireSource connects to the endpoint and starts the reader goroutine.
func NewWireSource(ctx context.Context, sourceID, endpoint string, config *WireConfig, logger *log.Logger) (*WireSource, error) {
	cfg := DefaultWireConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &WireSource{
		sourceID: sourceID,
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		items:    make(chan wireItem, cfg.Buffer),
		done:     make(chan struct{}),
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop(conn)

	return s, nil
}

var _ CandidateSource = (*WireSource)(nil)

func (s *WireSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wire dial %s: %v", ErrSourceUnavailable, s.endpoint, err)
	}
	return conn, nil
}

// readLoop reads frames until Close, reconnecting with backoff on errors.
func (s *WireSource) readLoop(conn *websocket.Conn) {
	defer s.wg.Done()

	delay := s.config.ReconnectDelay
	for {
		select {
		case <-s.done:
			conn.Close()
			return
		default:
		}

		if s.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if s.closed.Load() {
				return
			}
			s.logger.Printf("[wire] %s read failed, reconnecting in %v: %v", s.sourceID, delay, err)

			select {
			case <-time.After(delay):
			case <-s.done:
				return
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}

			next, dialErr := s.dial(context.Background())
			if dialErr != nil {
				s.logger.Printf("[wire] %s reconnect failed: %v", s.sourceID, dialErr)
				// Keep a dead connection so the next loop iteration
				// fails fast and retries with increased delay.
				continue
			}
			conn = next
			continue
		}
		delay = s.config.ReconnectDelay

		var item wireItem
		if err := json.Unmarshal(data, &item); err != nil {
			s.logger.Printf("[wire] %s skipping malformed frame: %v", s.sourceID, err)
			continue
		}

		select {
		case s.items <- item:
		default:
			// Buffer full: drop the oldest item to keep the feed moving.
			select {
			case <-s.items:
			default:
			}
			select {
			case s.items <- item:
			default:
			}
		}
	}
}

// Fetch drains all buffered wire items without blocking on new frames.
// A connected wire with no pending items returns an empty slice and nil
// error; wire silence is not a failure.
func (s *WireSource) Fetch(ctx context.Context) ([]domain.RawCandidate, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("%w: wire %s is closed", ErrSourceUnavailable, s.sourceID)
	}

	var candidates []domain.RawCandidate
	for {
		select {
		case <-ctx.Done():
			return candidates, ctx.Err()
		case item := <-s.items:
			if item.Headline == "" {
				continue
			}
			candidates = append(candidates, domain.RawCandidate{
				SourceID:    s.sourceID,
				Headline:    item.Headline,
				Summary:     item.Summary,
				URL:         item.URL,
				PublishedAt: item.PublishedAt,
			})
		default:
			return candidates, nil
		}
	}
}

// Close stops the reader goroutine and closes the connection.
func (s *WireSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	return nil
}
