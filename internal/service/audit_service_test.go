package service

import (
	"context"
	"testing"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingAuditRepo parks Create until released, and signals when the worker
// has entered it so tests can fill the buffer deterministically.
type blockingAuditRepo struct {
	entered chan struct{}
	release chan struct{}
	entries []*domain.AuditLog
}

func newBlockingAuditRepo() *blockingAuditRepo {
	return &blockingAuditRepo{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (r *blockingAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	select {
	case r.entered <- struct{}{}:
	default:
	}
	<-r.release
	r.entries = append(r.entries, entry)
	return nil
}

func TestAuditServicePersistsEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	collector := metrics.NewCollectorWith("test", prometheus.NewRegistry())
	svc := NewAuditService(repo, collector, zap.NewNop())

	svc.LogAsync(context.Background(), AuditEntry{Action: "login", ResourceType: "session"})
	svc.LogAsync(context.Background(), AuditEntry{Action: "create", ResourceType: "flag"})
	svc.Shutdown()

	require.Len(t, repo.entries, 2)
	assert.Equal(t, domain.ActionLogin, repo.entries[0].Action)
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.AuditEntriesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.AuditBufferDropped))
}

func TestAuditServiceDropsWhenBufferFull(t *testing.T) {
	repo := newBlockingAuditRepo()
	collector := metrics.NewCollectorWith("test", prometheus.NewRegistry())
	svc := newAuditService(repo, collector, zap.NewNop(), 1)

	// First entry is picked up by the worker, which blocks inside Create.
	svc.LogAsync(context.Background(), AuditEntry{Action: "login"})
	<-repo.entered

	// Second fills the buffer; third has nowhere to go and is dropped.
	svc.LogAsync(context.Background(), AuditEntry{Action: "create"})
	svc.LogAsync(context.Background(), AuditEntry{Action: "update"})

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.AuditBufferDropped))

	close(repo.release)
	svc.Shutdown()

	require.Len(t, repo.entries, 2, "queued entries still persist after the drop")
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.AuditEntriesTotal))
}
