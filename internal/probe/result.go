package probe

import "time"

// Status is the outcome of a single probe.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// CheckResult is the outcome of one probe run. A probe reports failure
// through Error; it never returns a Go error to its caller.
type CheckResult struct {
	ProbeName string
	Status    Status
	Detail    string
	Error     string
	Duration  time.Duration
	CheckedAt time.Time
}

// Report aggregates the results of one harness run. Iteration order matches
// probe registration order; lookup by probe name is also supported.
type Report struct {
	results []CheckResult
	byName  map[string]int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{byName: make(map[string]int)}
}

// Add appends a result. A result for an already-recorded probe name replaces
// the previous one in place, keeping exactly one entry per probe.
func (r *Report) Add(res CheckResult) {
	if i, ok := r.byName[res.ProbeName]; ok {
		r.results[i] = res
		return
	}
	r.byName[res.ProbeName] = len(r.results)
	r.results = append(r.results, res)
}

// Results returns all results in registration order.
func (r *Report) Results() []CheckResult {
	return r.results
}

// Get returns the result for the named probe.
func (r *Report) Get(name string) (CheckResult, bool) {
	i, ok := r.byName[name]
	if !ok {
		return CheckResult{}, false
	}
	return r.results[i], true
}

// Len returns the number of recorded results.
func (r *Report) Len() int {
	return len(r.results)
}

// OK reports whether every probe passed.
func (r *Report) OK() bool {
	for _, res := range r.results {
		if res.Status != StatusPass {
			return false
		}
	}
	return true
}
