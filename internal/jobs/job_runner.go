// Package jobs holds the gateway's background maintenance work, invoked on
// schedule by the scheduler.
package jobs

import (
	"context"

	"mattter-gateway/internal/config"
	"mattter-gateway/internal/logger"
	"mattter-gateway/internal/session"
)

// ThreadRegistry is implemented by the gateway's message-thread table.
type ThreadRegistry interface {
	// PruneIdle closes threads idle past the configured limit and returns
	// how many were closed.
	PruneIdle() int
}

// JobRunner wires the scheduled jobs to their collaborators.
type JobRunner struct {
	cfg     *config.Config
	sess    *session.Store
	threads ThreadRegistry
}

func NewJobRunner(cfg *config.Config, sess *session.Store, threads ThreadRegistry) *JobRunner {
	return &JobRunner{cfg: cfg, sess: sess, threads: threads}
}

// Config exposes the schedule settings to the scheduler.
func (j *JobRunner) Config() *config.Config {
	return j.cfg
}

// RevalidateIdentity re-checks the cached identity against the backend.
// The cached-user fast path at startup trades a staleness window for
// instant load; this job closes that window periodically.
func (j *JobRunner) RevalidateIdentity() {
	ctx := context.Background()
	if err := j.sess.RefreshIdentity(ctx); err != nil {
		logger.Warn("identity revalidation failed", "error", err)
		return
	}
	logger.Debug("identity revalidated")
}

// PruneIdleThreads stops polling channels for conversations nobody has
// touched recently, so an abandoned screen stops generating fetches.
func (j *JobRunner) PruneIdleThreads() {
	if j.threads == nil {
		return
	}
	if n := j.threads.PruneIdle(); n > 0 {
		logger.Info("pruned idle message threads", "count", n)
	}
}
