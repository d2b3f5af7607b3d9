// Package hashing runs bcrypt on a fixed set of worker goroutines so that the
// number of concurrent CPU-heavy hash computations stays bounded no matter how
// many requests arrive at once.
package hashing

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
)

const channelBuffer = 64

// ErrPoolStopped is returned for work submitted after the pool has shut down.
var ErrPoolStopped = errors.New("hashing: pool stopped")

type op int

const (
	opHash op = iota
	opVerify
)

func (o op) String() string {
	if o == opHash {
		return "hash"
	}
	return "verify"
}

type job struct {
	ctx      context.Context
	op       op
	password string
	hash     string
	result   chan result
}

type result struct {
	hash string
	ok   bool
	err  error
}

// Pool implements ports.PasswordHasher.
type Pool struct {
	jobs    chan job
	workers int
	cost    int
	stopped <-chan struct{}
	log     zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers hashing at the given bcrypt
// cost. If numWorkers <= 0, GOMAXPROCS is used; an out-of-range cost falls
// back to bcrypt.DefaultCost. Call Start before submitting work.
func NewPool(numWorkers, cost int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Pool{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		cost:    cost,
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.stopped = ctx.Done()
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
}

// Hash returns a salted bcrypt hash of password.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, job{op: opHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify reports whether password matches hash. A malformed hash is a
// mismatch, not an error.
func (p *Pool) Verify(ctx context.Context, password, hash string) (bool, error) {
	res, err := p.submit(ctx, job{op: opVerify, password: password, hash: hash})
	if err != nil {
		return false, err
	}
	return res.ok, nil
}

// submit enqueues j and waits for its result. If ctx ends first the caller
// walks away; a worker that later picks the job up skips it.
func (p *Pool) submit(ctx context.Context, j job) (result, error) {
	j.ctx = ctx
	j.result = make(chan result, 1)

	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-p.stopped:
		return result{}, ErrPoolStopped
	}

	select {
	case res := <-j.result:
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-p.stopped:
		return result{}, ErrPoolStopped
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			if j.ctx.Err() != nil {
				p.log.Debug().Int("worker_id", id).Str("op", j.op.String()).Msg("abandoned hashing job skipped")
				continue
			}
			j.result <- p.run(j)
		}
	}
}

func (p *Pool) run(j job) result {
	start := time.Now()
	defer func() {
		metrics.PasswordHashDuration.WithLabelValues(j.op.String()).Observe(time.Since(start).Seconds())
	}()

	switch j.op {
	case opHash:
		h, err := bcrypt.GenerateFromPassword([]byte(j.password), p.cost)
		if err != nil {
			return result{err: err}
		}
		return result{hash: string(h)}
	default:
		return result{ok: bcrypt.CompareHashAndPassword([]byte(j.hash), []byte(j.password)) == nil}
	}
}
