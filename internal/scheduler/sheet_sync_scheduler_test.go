package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	mu      sync.Mutex
	syncs   int
	removed []string
	err     error
}

func (m *fakeMirror) Sync(ctx context.Context) (*service.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	if m.err != nil {
		return nil, m.err
	}
	return &service.SyncResult{}, nil
}

func (m *fakeMirror) EnsureTabs(ctx context.Context) error { return nil }

func (m *fakeMirror) Status(ctx context.Context) (*service.InitStatus, error) {
	return &service.InitStatus{}, nil
}

func (m *fakeMirror) PartnerRemoved(partnerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, partnerID)
}

func (m *fakeMirror) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs
}

// 한 시간에 한 번이라 테스트 중에는 cron 이 돌지 않는다
const testSpec = "@every 1h"

func TestSheetSyncScheduler_TriggersAreCoalesced(t *testing.T) {
	mirror := &fakeMirror{}
	s := NewSheetSyncScheduler(mirror, testSpec, 50*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	for i := 0; i < 10; i++ {
		s.Trigger()
	}

	assert.Eventually(t, func() bool { return mirror.count() == 1 }, time.Second, 10*time.Millisecond)
	// 모인 트리거가 두 번째 실행을 만들지 않는다
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, mirror.count())

	s.Trigger()
	assert.Eventually(t, func() bool { return mirror.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestSheetSyncScheduler_NotConfiguredIsQuiet(t *testing.T) {
	mirror := &fakeMirror{err: sheets.ErrNotConfigured}
	s := NewSheetSyncScheduler(mirror, testSpec, 0)
	require.NoError(t, s.Start())
	defer s.Stop()

	s.Trigger()
	assert.Eventually(t, func() bool { return mirror.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSheetSyncScheduler_PartnerRemoved(t *testing.T) {
	mirror := &fakeMirror{}
	s := NewSheetSyncScheduler(mirror, "", 0)
	assert.Equal(t, DefaultSyncSpec, s.spec)

	var _ service.SyncTrigger = s
	var _ service.PartnerRemovalListener = s

	s.PartnerRemoved("P-1")
	assert.Equal(t, []string{"P-1"}, mirror.removed)
}

func TestSheetSyncScheduler_BadSpec(t *testing.T) {
	s := NewSheetSyncScheduler(&fakeMirror{}, "not a spec", 0)
	assert.Error(t, s.Start())
}

func TestSheetSyncScheduler_TriggerNeverBlocks(t *testing.T) {
	s := NewSheetSyncScheduler(&fakeMirror{}, testSpec, 0)

	done := make(chan struct{})
	go func() {
		// loop 가 없어도 버퍼 하나로 끝난다
		s.Trigger()
		s.Trigger()
		s.Trigger()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked")
	}
}
