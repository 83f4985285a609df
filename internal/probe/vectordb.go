package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/hazz-dev/kbprobe/internal/vectordb"
)

const vectorDBProbeName = "vectordb"

// VectorDBConnector builds a connected vector database handle. Construction
// runs inside the probe so that connection or collection-bootstrap failures
// surface as a failed check.
type VectorDBConnector func(ctx context.Context) (vectordb.Store, error)

type vectorDBProbe struct {
	connect VectorDBConnector
	timeout time.Duration
}

// NewVectorDB returns the vector database probe. Each check connects and
// reads collection statistics within timeout.
func NewVectorDB(connect VectorDBConnector, timeout time.Duration) Probe {
	return &vectorDBProbe{connect: connect, timeout: timeout}
}

func (p *vectorDBProbe) Name() string { return vectorDBProbeName }

func (p *vectorDBProbe) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		ProbeName: vectorDBProbeName,
		CheckedAt: start,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	store, err := p.connect(ctx)
	if err != nil {
		result.Status = StatusFail
		result.Error = fmt.Sprintf("connecting: %v", err)
		result.Duration = time.Since(start)
		return result
	}
	defer store.Close()

	stats, err := store.Statistics(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusFail
		result.Error = fmt.Sprintf("statistics: %v", err)
		return result
	}

	result.Status = StatusPass
	result.Detail = fmt.Sprintf("type=%s collection=%s documents=%d",
		store.DBType(), store.CollectionName(), stats.Documents)
	return result
}
