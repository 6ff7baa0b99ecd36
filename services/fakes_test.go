package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeSheetStore is an in-memory SheetStore keyed by range and cell address
type fakeSheetStore struct {
	mu        sync.Mutex
	rows      map[string][][]string
	getErr    error
	appendErr error
	updateErr error
	gets      int
	appended  [][]interface{}
	updates   map[string]interface{}
}

func newFakeSheetStore() *fakeSheetStore {
	return &fakeSheetStore{
		rows:    make(map[string][][]string),
		updates: make(map[string]interface{}),
	}
}

func (s *fakeSheetStore) Get(ctx context.Context, rangeName string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	rows := s.rows[rangeName]
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (s *fakeSheetStore) Append(ctx context.Context, rangeName string, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, row)
	return nil
}

func (s *fakeSheetStore) Update(ctx context.Context, cell string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates[cell] = value
	return nil
}

// setCell writes into the stored rows so a following Get observes it
func (s *fakeSheetStore) setCell(rangeName string, row, col int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.rows[rangeName][row]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = value
	s.rows[rangeName][row] = r
}

type sentMessage struct {
	chatID    int64
	text      string
	parseMode string
}

type fakeChatSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn map[int64]bool
}

func (f *fakeChatSender) Send(ctx context.Context, chatID int64, text, parseMode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[chatID] {
		return errors.New("telegram: chat not found")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, parseMode: parseMode})
	return nil
}

// manualClock is a settable Clock for expiry tests
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
