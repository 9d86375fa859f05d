package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"twfollowers/pkg/logger"
	"twfollowers/pkg/ratelimit"
	"twfollowers/pkg/twitter"
)

// ErrNotPerformed marks a job that never reached a worker
var ErrNotPerformed = errors.New("lookup not performed")

// Job is one username to look up, tagged with its position in the list
type Job struct {
	Index    int
	Username string
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	User     *twitter.User
	Err      error
	Waited   time.Duration
	Duration time.Duration
}

// Lookuper resolves one username to its account details
type Lookuper interface {
	Lookup(ctx context.Context, username string) (*twitter.User, error)
}

// LookupFunc adapts a function to Lookuper
type LookupFunc func(ctx context.Context, username string) (*twitter.User, error)

func (f LookupFunc) Lookup(ctx context.Context, username string) (*twitter.User, error) {
	return f(ctx, username)
}

// Pool runs account lookups on a fixed number of workers, each call paced
// by the shared limiter. A Pool is single use: Start, Submit, Stop.
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	lookuper    Lookuper
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewPool creates a lookup pool
func NewPool(numWorkers int, lookuper Lookuper, rateLimiter ratelimit.Limiter, log logger.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		lookuper:    lookuper,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start launches the workers; they stop early when ctx is cancelled
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	logger.LogComponentStart(p.logger, "lookup_pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes Results
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()

	logger.LogComponentStop(p.logger, "lookup_pool", "queue drained")
}

// Submit queues a job, blocking while the queue is full
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("lookup pool is shutting down: %w", p.ctx.Err())
	}
}

// Results returns the channel results are delivered on, in completion order
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		if p.ctx.Err() != nil {
			return
		}

		result := p.process(job, id)

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	if p.rateLimiter != nil && !p.rateLimiter.Allow() {
		if err := p.rateLimiter.Wait(p.ctx); err != nil {
			result.Err = fmt.Errorf("waiting for rate limit: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.Waited = time.Since(start)
		logger.LogRateLimit(p.logger, job.Username, result.Waited)
	}

	user, err := p.lookuper.Lookup(p.ctx, job.Username)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		p.logger.WarnWithFields("Account lookup failed", map[string]interface{}{
			"worker_id": workerID,
			"username":  job.Username,
			"error":     err.Error(),
		})
		return result
	}

	result.User = user
	p.logger.DebugWithFields("Account lookup completed", map[string]interface{}{
		"worker_id": workerID,
		"username":  job.Username,
		"followers": user.FollowersCount,
		"duration":  result.Duration,
	})
	return result
}

// Run looks up every username and returns one result per input, in input
// order. Inputs that never ran because ctx ended carry ctx's error.
func (p *Pool) Run(ctx context.Context, usernames []string) []Result {
	results := make([]Result, len(usernames))
	if len(usernames) == 0 {
		return results
	}

	p.Start(ctx)

	go func() {
		defer p.Stop()
		for i, username := range usernames {
			if err := p.Submit(Job{Index: i, Username: username}); err != nil {
				return
			}
		}
	}()

	seen := make([]bool, len(usernames))
	for r := range p.Results() {
		results[r.Job.Index] = r
		seen[r.Job.Index] = true
	}

	for i, ok := range seen {
		if ok {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = ErrNotPerformed
		}
		results[i] = Result{Job: Job{Index: i, Username: usernames[i]}, Err: err}
	}

	return results
}
