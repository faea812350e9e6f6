// Package jobs holds the background jobs run by the server scheduler.
package jobs

import (
	"context"
	"sort"
	"sync"
)

// Job is a job that can be registered with the scheduler.
type Job struct {
	ID     int
	Name   string
	Runner Runner
}

// Runner is a job runner.
type Runner interface {
	// Spec returns the cron schedule of the job. An empty spec disables it.
	Spec(context.Context) string
	// Func returns the function run on every tick.
	Func(context.Context) func()
}

var (
	mtx  sync.Mutex
	jobs = make(map[string]*Job)
)

// Register registers a job.
func Register(name string, runner Runner) {
	mtx.Lock()
	defer mtx.Unlock()
	jobs[name] = &Job{Name: name, Runner: runner}
}

// List returns the registered jobs sorted by name.
func List() []*Job {
	mtx.Lock()
	defer mtx.Unlock()
	list := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, j)
	}
	sort.Slice(list, func(i, k int) bool { return list[i].Name < list[k].Name })
	return list
}
