package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Warmer populates every cached dataset
type Warmer interface {
	Warmup(ctx context.Context) error
}

type CacheWarmupJob struct {
	Cache   Warmer
	Timeout time.Duration
}

func NewCacheWarmupJob(cache Warmer) *CacheWarmupJob {
	return &CacheWarmupJob{Cache: cache, Timeout: 2 * time.Minute}
}

func (j *CacheWarmupJob) Run(ctx context.Context) error {
	logrus.Info("Starting Cache Warmup Job")
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	if err := j.Cache.Warmup(ctx); err != nil {
		logrus.WithError(err).Error("Cache Warmup Job finished with errors")
		return err
	}

	logrus.Infof("Cache Warmup Job completed (took %v)", time.Since(start))
	return nil
}
