package usecase

import (
	"context"
	"testing"
	"time"

	"RegionPulse/internal/domain/models"
)

type recordingSnapshots struct {
	saved []*models.ForecastSnapshot
}

func (s *recordingSnapshots) SaveSnapshot(_ context.Context, snap *models.ForecastSnapshot) error {
	s.saved = append(s.saved, snap)
	return nil
}

func (s *recordingSnapshots) LatestSnapshot(_ context.Context, region string) (*models.ForecastSnapshot, error) {
	if len(s.saved) == 0 {
		return nil, nil
	}
	return s.saved[len(s.saved)-1], nil
}

// fakeLocks implements cache.Service with a fixed TryLock answer.
type fakeLocks struct {
	grant    bool
	locked   []string
	unlocked []string
}

func (f *fakeLocks) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (f *fakeLocks) Get(context.Context, string, interface{}) error                { return nil }
func (f *fakeLocks) Delete(context.Context, ...string) error                       { return nil }
func (f *fakeLocks) DeleteByPattern(context.Context, string) error                 { return nil }
func (f *fakeLocks) Exists(context.Context, ...string) (bool, error)               { return false, nil }

func (f *fakeLocks) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.locked = append(f.locked, key)
	return f.grant, nil
}

func (f *fakeLocks) Unlock(_ context.Context, key string) error {
	f.unlocked = append(f.unlocked, key)
	return nil
}

func newTestRefreshJob(t *testing.T, snaps *recordingSnapshots, locks *fakeLocks) *RefreshJob {
	t.Helper()
	p := newTestPipeline(t, &stubHistory{records: pipelineHistory(30)})
	j := NewRefreshJob(p, snaps, nil, nil, nil, noopMetrics{}, pipelineLogger(t))
	if locks != nil {
		j.SetLocks(locks)
	}
	return j
}

func TestRefreshJobSavesSnapshot(t *testing.T) {
	snaps := &recordingSnapshots{}
	j := newTestRefreshJob(t, snaps, nil)

	err := j.Handle(context.Background(), RefreshPayload{Region: "PL-MZ", DaysBack: 30, Horizon: 7})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(snaps.saved) != 1 {
		t.Fatalf("snapshots saved = %d, want 1", len(snaps.saved))
	}
	snap := snaps.saved[0]
	if snap.Region != "PL-MZ" {
		t.Fatalf("snapshot region = %s", snap.Region)
	}
	if snap.Horizon != 7 {
		t.Fatalf("snapshot horizon = %d, want 7", snap.Horizon)
	}
	if len(snap.Payload) == 0 {
		t.Fatalf("snapshot payload empty")
	}
}

func TestRefreshJobSkipsWhenRegionLocked(t *testing.T) {
	snaps := &recordingSnapshots{}
	locks := &fakeLocks{grant: false}
	j := newTestRefreshJob(t, snaps, locks)

	err := j.Handle(context.Background(), RefreshPayload{Region: "PL-MZ", DaysBack: 30, Horizon: 7})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(snaps.saved) != 0 {
		t.Fatalf("locked region still recomputed, %d snapshots", len(snaps.saved))
	}
	if len(locks.locked) != 1 || locks.locked[0] != "refresh:lock:PL-MZ" {
		t.Fatalf("lock attempts = %v", locks.locked)
	}
	if len(locks.unlocked) != 0 {
		t.Fatalf("unheld lock was released: %v", locks.unlocked)
	}
}

func TestRefreshJobReleasesLockAfterRun(t *testing.T) {
	snaps := &recordingSnapshots{}
	locks := &fakeLocks{grant: true}
	j := newTestRefreshJob(t, snaps, locks)

	err := j.Handle(context.Background(), RefreshPayload{Region: "PL-MZ", DaysBack: 30, Horizon: 7})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(snaps.saved) != 1 {
		t.Fatalf("snapshots saved = %d, want 1", len(snaps.saved))
	}
	if len(locks.unlocked) != 1 || locks.unlocked[0] != "refresh:lock:PL-MZ" {
		t.Fatalf("lock releases = %v", locks.unlocked)
	}
}

func TestRefreshJobRejectsEmptyRegion(t *testing.T) {
	j := newTestRefreshJob(t, &recordingSnapshots{}, nil)
	if err := j.Handle(context.Background(), RefreshPayload{}); err == nil {
		t.Fatalf("empty region accepted")
	}
}
