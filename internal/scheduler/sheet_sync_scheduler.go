package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

const (
	DefaultSyncSpec = "@every 5m"
	syncTimeout     = 2 * time.Minute
)

var sheetSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sangjo",
	Name:      "sheet_sync_runs_total",
	Help:      "Sheet mirror runs by trigger and result.",
}, []string{"trigger", "result"})

// SheetSyncScheduler 시트 미러를 주기적으로, 그리고 DB 쓰기 직후에 돌린다.
// 쓰기 직후 트리거는 debounce 동안 모아서 한 번만 실행한다
type SheetSyncScheduler struct {
	cron     *cron.Cron
	mirror   service.SheetMirrorService
	spec     string
	debounce time.Duration

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func NewSheetSyncScheduler(mirror service.SheetMirrorService, spec string, debounce time.Duration) *SheetSyncScheduler {
	if spec == "" {
		spec = DefaultSyncSpec
	}
	return &SheetSyncScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		mirror:   mirror,
		spec:     spec,
		debounce: debounce,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Trigger 막히지 않는다. 이미 대기 중인 트리거가 있으면 합쳐진다
func (s *SheetSyncScheduler) Trigger() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// PartnerRemoved 다음 실행에서 시트의 파트너 행을 지우도록 미러에 넘긴다
func (s *SheetSyncScheduler) PartnerRemoved(partnerID string) {
	s.mirror.PartnerRemoved(partnerID)
}

func (s *SheetSyncScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.run("cron")
	})
	if err != nil {
		logger.Error("Failed to add cron job for sheet sync", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.wg.Add(1)
	go s.loop()

	s.cron.Start()
	logger.Info("Sheet sync scheduler started", map[string]interface{}{
		"spec":        s.spec,
		"debounce_ms": s.debounce.Milliseconds(),
	})
	return nil
}

func (s *SheetSyncScheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
		}

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-s.done:
				timer.Stop()
				return
			case <-timer.C:
			}
			// debounce 중에 들어온 트리거는 이번 실행이 처리한다
			select {
			case <-s.kick:
			default:
			}
		}
		s.run("write")
	}
}

func (s *SheetSyncScheduler) run(trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.mirror.Sync(ctx)
	switch {
	case errors.Is(err, sheets.ErrNotConfigured):
		sheetSyncRuns.WithLabelValues(trigger, "skipped").Inc()
		return
	case err != nil:
		sheetSyncRuns.WithLabelValues(trigger, "error").Inc()
		logger.Error("Scheduled sheet sync failed", err, map[string]interface{}{
			"trigger": trigger,
		})
		return
	}

	sheetSyncRuns.WithLabelValues(trigger, "ok").Inc()
	logger.Debug("Sheet sync finished", map[string]interface{}{
		"trigger":      trigger,
		"partners":     result.Partners,
		"applications": result.Applications,
		"history":      result.History,
		"requests":     result.PartnerRequests,
		"removed":      result.Removed,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})
}

func (s *SheetSyncScheduler) Stop() {
	logger.Info("Stopping sheet sync scheduler...")
	close(s.done)
	<-s.cron.Stop().Done()
	s.wg.Wait()
	logger.Info("Sheet sync scheduler stopped")
}
