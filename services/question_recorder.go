package services

import (
	"context"
	"strings"
	"time"

	"github.com/fenilmodi00/meabot-backend/shared"
	"github.com/sirupsen/logrus"
)

// QuestionTimestampLayout renders local time as ISO-8601 with microseconds
const QuestionTimestampLayout = "2006-01-02T15:04:05.000000"

// MissingDisplayName is stored when the requester has no display name
const MissingDisplayName = "N/A"

// QuestionRecorder appends submitted questions to the external question log
type QuestionRecorder struct {
	store          SheetStore
	questionsRange string
	clock          Clock
	metrics        *shared.Metrics
}

// NewQuestionRecorder creates a recorder writing to questionsRange
func NewQuestionRecorder(store SheetStore, questionsRange string, clock Clock, metrics *shared.Metrics) *QuestionRecorder {
	if clock == nil {
		clock = time.Now
	}
	return &QuestionRecorder{
		store:          store,
		questionsRange: questionsRange,
		clock:          clock,
		metrics:        metrics,
	}
}

// Record appends a new row (timestamp, requester id, display name, question).
// Answer and delivered cells are left empty for the operator and the
// reconciliation job. Append failures are returned to the caller.
func (r *QuestionRecorder) Record(ctx context.Context, requesterID int64, displayName, questionText string) error {
	if strings.TrimSpace(displayName) == "" {
		displayName = MissingDisplayName
	}

	row := []interface{}{
		r.clock().Format(QuestionTimestampLayout),
		requesterID,
		displayName,
		questionText,
	}

	if err := r.store.Append(ctx, r.questionsRange, row); err != nil {
		r.observe("error")
		logrus.WithFields(logrus.Fields{
			"component":    "QuestionRecorder",
			"requester_id": requesterID,
		}).WithError(err).Error("Failed to record question")
		return shared.WrapError(err, shared.ErrorCategoryNetwork, "QUESTION_APPEND_FAILED",
			"QuestionRecorder", "record", shared.IsRetryableError(err))
	}

	r.observe("ok")
	logrus.WithFields(logrus.Fields{
		"component":    "QuestionRecorder",
		"requester_id": requesterID,
		"length":       len(questionText),
	}).Info("Question recorded")
	return nil
}

func (r *QuestionRecorder) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.QuestionsRecordedTotal.WithLabelValues(outcome).Inc()
	}
}
