package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/img2video/internal/engine"
)

var ErrUnknownJob = errors.New("unknown job")

// Status is the lifecycle state of a job. Queued and Running lead to
// exactly one of the terminal states Done or Error.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Snapshot is a point-in-time copy of a job record. Progress is a
// percentage in [0,100]; it reaches exactly 100 only when the job is
// done.
type Snapshot struct {
	ID        string              `json:"job_id"`
	Status    Status              `json:"status"`
	Progress  float64             `json:"progress"`
	Motion    string              `json:"motion"`
	Quality   string              `json:"quality"`
	Images    int                 `json:"images"`
	Outputs   []engine.Output     `json:"outputs,omitempty"`
	Errors    []engine.ImageError `json:"errors,omitempty"`
	Message   string              `json:"message,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type record struct {
	snap Snapshot
}

// Registry tracks submitted batch jobs for the lifetime of the
// process. Each job runs on its own goroutine, bounded by a semaphore;
// the owning goroutine is the only writer of its record, everyone else
// reads snapshots.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record

	runner *engine.Runner
	sem    *semaphore.Weighted
	log    *logrus.Logger
	wg     sync.WaitGroup
}

func NewRegistry(runner *engine.Runner, maxConcurrent int64, log *logrus.Logger) *Registry {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		records: make(map[string]*record),
		runner:  runner,
		sem:     semaphore.NewWeighted(maxConcurrent),
		log:     log,
	}
}

// Submit creates a queued job record for the request, schedules the
// batch to run in the background and returns the job id immediately.
// The registry takes ownership of req.Source and closes it when the
// job finishes.
func (g *Registry) Submit(req engine.Request) string {
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now()

	g.mu.Lock()
	g.records[id] = &record{snap: Snapshot{
		ID:        id,
		Status:    StatusQueued,
		Motion:    req.Kind,
		Quality:   req.Tag,
		Images:    req.Source.Count(),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	g.mu.Unlock()

	g.log.WithFields(logrus.Fields{"job": id, "motion": req.Kind, "images": req.Source.Count()}).Info("job queued")

	g.wg.Add(1)
	go g.run(id, req)
	return id
}

// Get returns a snapshot of the job record, never a live reference.
func (g *Registry) Get(id string) (Snapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.records[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return rec.snap, nil
}

// List returns snapshots of every known job, oldest first.
func (g *Registry) List() []Snapshot {
	g.mu.RLock()
	snaps := make([]Snapshot, 0, len(g.records))
	for _, rec := range g.records {
		snaps = append(snaps, rec.snap)
	}
	g.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	return snaps
}

// Wait blocks until every submitted job has reached a terminal state.
func (g *Registry) Wait() {
	g.wg.Wait()
}

func (g *Registry) run(id string, req engine.Request) {
	defer g.wg.Done()
	defer req.Source.Close()
	defer func() {
		if p := recover(); p != nil {
			g.fail(id, fmt.Errorf("batch panic: %v", p))
		}
	}()

	if err := g.sem.Acquire(context.Background(), 1); err != nil {
		g.fail(id, err)
		return
	}
	defer g.sem.Release(1)

	g.start(id)
	res, err := g.runner.Run(context.Background(), req, func(pct float64) {
		g.advance(id, pct)
	})
	if err != nil {
		g.fail(id, err)
		return
	}
	g.complete(id, res)
}

func (g *Registry) start(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok || rec.snap.Status != StatusQueued {
		return
	}
	rec.snap.Status = StatusRunning
	rec.snap.UpdatedAt = time.Now()
}

// advance moves the progress of a running job forward. Progress never
// decreases and is held below 100 until the job completes, so pollers
// can treat 100 as done.
func (g *Registry) advance(id string, pct float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok || rec.snap.Status != StatusRunning {
		return
	}
	if pct > 99 {
		pct = 99
	}
	if pct < rec.snap.Progress {
		return
	}
	rec.snap.Progress = pct
	rec.snap.UpdatedAt = time.Now()
}

func (g *Registry) complete(id string, res *engine.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok || rec.snap.Status == StatusDone || rec.snap.Status == StatusError {
		return
	}
	rec.snap.Status = StatusDone
	rec.snap.Progress = 100
	rec.snap.Outputs = res.Outputs
	rec.snap.Errors = res.Errors
	rec.snap.Message = fmt.Sprintf("created %d of %d clips in %.2fs",
		len(res.Outputs), rec.snap.Images, res.Finished.Sub(res.Started).Seconds())
	rec.snap.UpdatedAt = time.Now()

	g.log.WithFields(logrus.Fields{"job": id, "outputs": len(res.Outputs), "errors": len(res.Errors)}).Info("job done")
}

func (g *Registry) fail(id string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok || rec.snap.Status == StatusDone || rec.snap.Status == StatusError {
		return
	}
	rec.snap.Status = StatusError
	rec.snap.Message = err.Error()
	rec.snap.UpdatedAt = time.Now()

	g.log.WithError(err).WithField("job", id).Error("job failed")
}
