package services

import (
	"context"
	"errors"
	"testing"
)

func TestRecordAppendsQuestionRow(t *testing.T) {
	store := newFakeSheetStore()
	clock := newManualClock()
	recorder := NewQuestionRecorder(store, testQuestionsRange, clock.Now, nil)

	if err := recorder.Record(context.Background(), 12345, "alice", "How do I apply?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.appended) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(store.appended))
	}
	row := store.appended[0]
	if len(row) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(row))
	}
	if row[0] != "2025-03-01T12:00:00.000000" {
		t.Errorf("unexpected timestamp %v", row[0])
	}
	if row[1] != int64(12345) || row[2] != "alice" || row[3] != "How do I apply?" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestRecordUsesSentinelForMissingDisplayName(t *testing.T) {
	store := newFakeSheetStore()
	recorder := NewQuestionRecorder(store, testQuestionsRange, nil, nil)

	if err := recorder.Record(context.Background(), 1, "  ", "Question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.appended[0][2] != MissingDisplayName {
		t.Errorf("expected %q, got %v", MissingDisplayName, store.appended[0][2])
	}
}

func TestRecordSurfacesAppendFailure(t *testing.T) {
	store := newFakeSheetStore()
	store.appendErr = errors.New("sheets: 429 rate limit exceeded")
	recorder := NewQuestionRecorder(store, testQuestionsRange, nil, nil)

	err := recorder.Record(context.Background(), 1, "bob", "Question")
	if err == nil {
		t.Fatal("expected append failure to be returned")
	}
	if !errors.Is(err, store.appendErr) {
		t.Errorf("expected wrapped append error, got %v", err)
	}
}
