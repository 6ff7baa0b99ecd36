package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/fenilmodi00/meabot-backend/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reconciler is the single pass driven by AnswerDeliveryJob
type Reconciler interface {
	Reconcile(ctx context.Context) (services.ReconciliationResult, error)
}

type AnswerDeliveryJob struct {
	Reconciler Reconciler
	Timeout    time.Duration
}

func NewAnswerDeliveryJob(reconciler Reconciler) *AnswerDeliveryJob {
	return &AnswerDeliveryJob{
		Reconciler: reconciler,
		Timeout:    5 * time.Minute,
	}
}

// Start runs the job immediately and then every interval until ctx is done
func (j *AnswerDeliveryJob) Start(ctx context.Context, interval time.Duration) {
	logrus.Infof("Starting Answer Delivery Job (runs every %v)...", interval)
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		j.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Answer Delivery Job stopped")
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs one reconciliation pass and logs its summary
func (j *AnswerDeliveryJob) RunOnce(ctx context.Context) (services.ReconciliationResult, error) {
	runID := uuid.New().String()
	logger := logrus.WithFields(logrus.Fields{
		"job":    "answer_delivery",
		"run_id": runID,
	})

	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	logger.Info("Running Answer Delivery Job...")
	result, err := j.Reconciler.Reconcile(ctx)
	if errors.Is(err, services.ErrReconciliationInProgress) {
		logger.Warn("Answer Delivery Job skipped: previous run still in progress")
		return result, err
	}
	if err != nil {
		logger.WithError(err).Error("Answer Delivery Job failed")
		return result, err
	}

	fields := logrus.Fields{
		"rows":               result.RowsScanned,
		"pending":            result.Pending,
		"delivered":          result.Delivered,
		"skipped_invalid_id": result.InvalidRequester,
		"send_failed":        result.SendFailed,
		"mark_failed":        result.MarkFailed,
		"duration":           result.Duration,
	}
	if result.ErrorSummary != "" {
		logger.WithFields(fields).Warnf("Answer Delivery Job completed with failures: %s", result.ErrorSummary)
	} else {
		logger.WithFields(fields).Info("Answer Delivery Job completed successfully")
	}

	return result, nil
}
