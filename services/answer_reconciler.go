package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// ErrReconciliationInProgress is returned when a run is already active in
// this process
var ErrReconciliationInProgress = errors.New("answer reconciliation already running")

// deliveredColumnOffset is the position of the delivered flag in a question row
const deliveredColumnOffset = models.QuestionColumns - 1

// ReconciliationResult summarises one pass over the question log
type ReconciliationResult struct {
	RowsScanned      int           `json:"rows_scanned"`
	Pending          int           `json:"pending"`
	Delivered        int           `json:"delivered"`
	InvalidRequester int           `json:"skipped_invalid_id"`
	SendFailed       int           `json:"send_failed"`
	MarkFailed       int           `json:"mark_failed"`
	Duration         time.Duration `json:"duration"`
	ErrorSummary     string        `json:"error_summary,omitempty"`
}

// AnswerReconciler finds answered-but-undelivered questions and delivers
// each to its requester, then flags the row as delivered.
//
// Delivery is at-least-once: the flag is written only after a successful
// send, so a send followed by a failed flag write is resent next run. The
// spreadsheet offers no conditional writes, so two processes reconciling at
// once can both deliver the same row; within one process overlapping runs
// are refused.
type AnswerReconciler struct {
	store          SheetStore
	sender         ChatSender
	questionsRange string
	layout         A1Range
	metrics        *shared.Metrics
	running        sync.Mutex
	logger         *logrus.Entry
}

// NewAnswerReconciler creates a reconciler over the question log at questionsRange
func NewAnswerReconciler(store SheetStore, sender ChatSender, questionsRange string, metrics *shared.Metrics) (*AnswerReconciler, error) {
	layout, err := ParseA1Range(questionsRange)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryConfiguration, "INVALID_QUESTIONS_RANGE",
			"AnswerReconciler", "init", false)
	}
	return &AnswerReconciler{
		store:          store,
		sender:         sender,
		questionsRange: questionsRange,
		layout:         layout,
		metrics:        metrics,
		logger:         logrus.WithField("component", "AnswerReconciler"),
	}, nil
}

// FormatAnswerMessage renders the Markdown message sent to the requester
func FormatAnswerMessage(q models.QuestionRecord) string {
	return "✅ *Answer Received*\n\n" +
		fmt.Sprintf("*Your question:* %s\n\n", q.QuestionText) +
		fmt.Sprintf("*Our answer:* %s", q.AnswerText)
}

// DeliveredCell returns the address of the delivered flag for a row
func (r *AnswerReconciler) DeliveredCell(rowIndex int) string {
	return r.layout.Cell(deliveredColumnOffset, rowIndex)
}

// Reconcile performs one pass. It fails when the log cannot be read, another
// pass is running, or ctx ends mid-scan (the partial result is still
// returned); every per-row failure is counted, logged and left for the next
// pass.
func (r *AnswerReconciler) Reconcile(ctx context.Context) (ReconciliationResult, error) {
	if !r.running.TryLock() {
		r.observeRun("skipped")
		return ReconciliationResult{}, ErrReconciliationInProgress
	}
	defer r.running.Unlock()

	start := time.Now()
	var result ReconciliationResult

	rows, err := r.store.Get(ctx, r.questionsRange)
	if err != nil {
		r.observeRun("error")
		return result, shared.WrapError(err, shared.ErrorCategoryNetwork, "QUESTION_LOG_READ_FAILED",
			"AnswerReconciler", "reconcile", shared.IsRetryableError(err))
	}
	result.RowsScanned = len(rows)

	var sampleErrors []error
	var interrupted error
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}

		question := models.QuestionFromRow(i, row)
		if !question.AwaitingDelivery() {
			continue
		}
		result.Pending++

		if err := r.deliver(ctx, question, &result); err != nil && len(sampleErrors) < 10 {
			sampleErrors = append(sampleErrors, err)
		}
	}

	result.Duration = time.Since(start)
	failures := result.InvalidRequester + result.SendFailed + result.MarkFailed
	if failures > 0 {
		result.ErrorSummary = shared.BuildBatchProcessingErrorSummary(result.Delivered, failures, sampleErrors)
	}

	// Rows not reached stay eligible for the next pass.
	if interrupted != nil {
		r.observeRun("interrupted")
		return result, shared.WrapError(interrupted, shared.ErrorCategoryTimeout, "RECONCILIATION_INTERRUPTED",
			"AnswerReconciler", "reconcile", true)
	}
	r.observeRun("ok")

	return result, nil
}

func (r *AnswerReconciler) deliver(ctx context.Context, q models.QuestionRecord, result *ReconciliationResult) error {
	sheetRow := q.RowIndex + r.layout.StartRow
	logger := r.logger.WithFields(logrus.Fields{
		"row":          sheetRow,
		"requester_id": q.RequesterID,
	})

	chatID, err := strconv.ParseInt(strings.TrimSpace(q.RequesterID), 10, 64)
	if err != nil {
		result.InvalidRequester++
		r.observeFailure("invalid_requester")
		svcErr := shared.NewServiceError(shared.ErrorCategoryValidation, "INVALID_REQUESTER_ID",
			fmt.Sprintf("row %d: invalid requester id %q", sheetRow, q.RequesterID),
			"AnswerReconciler", "deliver", false, err)
		logger.WithFields(svcErr.LogFields()).Warn("Skipping answer with unparseable requester id")
		return svcErr
	}

	if err := r.sender.Send(ctx, chatID, FormatAnswerMessage(q), tgbotapi.ModeMarkdown); err != nil {
		result.SendFailed++
		r.observeFailure("send")
		svcErr := shared.NewServiceError(shared.ErrorCategoryNetwork, "ANSWER_SEND_FAILED",
			fmt.Sprintf("row %d: send: %v", sheetRow, err),
			"AnswerReconciler", "deliver", shared.IsRetryableError(err), err)
		logger.WithFields(svcErr.LogFields()).Error("Failed to send answer, will retry next run")
		return svcErr
	}

	cell := r.DeliveredCell(q.RowIndex)
	if err := r.store.Update(ctx, cell, models.DeliveredSentinel); err != nil {
		// The answer went out; the row stays eligible and may be sent again.
		result.Delivered++
		result.MarkFailed++
		r.observeDelivered()
		r.observeFailure("mark")
		svcErr := shared.NewServiceError(shared.ErrorCategoryNetwork, "DELIVERED_FLAG_WRITE_FAILED",
			fmt.Sprintf("row %d: mark delivered %s: %v", sheetRow, cell, err),
			"AnswerReconciler", "deliver", shared.IsRetryableError(err), err)
		logger.WithFields(svcErr.LogFields()).Error("Answer sent but delivered flag not written")
		return svcErr
	}

	result.Delivered++
	r.observeDelivered()
	logger.WithField("cell", cell).Info("Answer delivered")
	return nil
}

func (r *AnswerReconciler) observeRun(outcome string) {
	if r.metrics != nil {
		r.metrics.ReconciliationRuns.WithLabelValues(outcome).Inc()
	}
}

func (r *AnswerReconciler) observeDelivered() {
	if r.metrics != nil {
		r.metrics.AnswersDeliveredTotal.Inc()
	}
}

func (r *AnswerReconciler) observeFailure(reason string) {
	if r.metrics != nil {
		r.metrics.AnswerFailuresTotal.WithLabelValues(reason).Inc()
	}
}
