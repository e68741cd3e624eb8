package reminder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: baseTime}
	path := filepath.Join(t.TempDir(), "reminders.json")
	s, err := Open(path, WithClock(clock.Now))
	require.NoError(t, err)
	return s, clock
}

func TestAddValidation(t *testing.T) {
	s, clock := newTestStore(t)

	_, err := s.Add(Input{Description: "", DueAt: clock.Now().Add(time.Hour), Repeat: RepeatNone})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	_, err = s.Add(Input{Description: "   ", DueAt: clock.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.Add(Input{Description: "x", DueAt: clock.Now().Add(-time.Minute), Repeat: RepeatNone})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_at", verr.Field)

	_, err = s.Add(Input{Description: "x", DueAt: clock.Now(), Repeat: RepeatNone})
	assert.ErrorIs(t, err, ErrValidation, "due time equal to now is not in the future")

	_, err = s.Add(Input{Description: "x", DueAt: clock.Now().Add(time.Hour), Repeat: Repeat("Monthly")})
	assert.ErrorIs(t, err, ErrValidation)

	r, err := s.Add(Input{Description: "x", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatDaily})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, RepeatDaily, r.Repeat)

	assert.Len(t, s.List(), 1)
}

func TestAddTrimsAndNormalizes(t *testing.T) {
	s, clock := newTestStore(t)

	due := clock.Now().Add(90*time.Minute + 42*time.Second)
	r, err := s.Add(Input{Description: "  water plants ", DueAt: due, Repeat: "weekly"})
	require.NoError(t, err)

	assert.Equal(t, "water plants", r.Description)
	assert.Equal(t, RepeatWeekly, r.Repeat)
	assert.Equal(t, 0, r.DueAt.Second())
	assert.Equal(t, "2026-10-16 10:30", FormatTime(r.DueAt))
}

func TestAddPersists(t *testing.T) {
	s, clock := newTestStore(t)

	r, err := s.Add(Input{Description: "call mom", DueAt: clock.Now().Add(time.Hour), Repeat: RepeatNone})
	require.NoError(t, err)

	reopened, err := Open(s.Path(), WithClock(clock.Now))
	require.NoError(t, err)
	require.Len(t, reopened.List(), 1)
	assert.Equal(t, r, reopened.List()[0])
}

func TestListReturnsSnapshotInInsertionOrder(t *testing.T) {
	s, clock := newTestStore(t)

	for _, desc := range []string{"b", "a", "c"} {
		_, err := s.Add(Input{Description: desc, DueAt: clock.Now().Add(time.Hour)})
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].Description)
	assert.Equal(t, "a", list[1].Description)
	assert.Equal(t, "c", list[2].Description)

	list[0].Description = "mutated"
	assert.Equal(t, "b", s.List()[0].Description)
}

func TestDuplicateDescriptionAndTimeAreDistinct(t *testing.T) {
	s, clock := newTestStore(t)
	due := clock.Now().Add(time.Hour)

	first, err := s.Add(Input{Description: "stand up", DueAt: due})
	require.NoError(t, err)
	second, err := s.Add(Input{Description: "stand up", DueAt: due})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, s.Remove(second.ID))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestUpdate(t *testing.T) {
	s, clock := newTestStore(t)

	r, err := s.Add(Input{Description: "old", DueAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	newDue := clock.Now().Add(48 * time.Hour)
	updated, err := s.Update(r.ID, Input{Description: "new", DueAt: newDue, Repeat: RepeatWeekly})
	require.NoError(t, err)
	assert.Equal(t, r.ID, updated.ID)
	assert.Equal(t, "new", updated.Description)
	assert.True(t, updated.DueAt.Equal(newDue))
	assert.Equal(t, RepeatWeekly, updated.Repeat)

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = s.Update(r.ID, Input{Description: "", DueAt: newDue})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Update(r.ID, Input{Description: "new", DueAt: clock.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrValidation)

	got, err = s.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got, "rejected update must not change the reminder")

	_, err = s.Update("missing", Input{Description: "x", DueAt: newDue})
	assert.ErrorIs(t, err, ErrNotFound)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "missing", nerr.ID)
}

func TestRemove(t *testing.T) {
	s, clock := newTestStore(t)

	r, err := s.Add(Input{Description: "x", DueAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, s.Remove(r.ID))
	assert.Empty(t, s.List())
	assert.ErrorIs(t, s.Remove(r.ID), ErrNotFound)

	_, err = s.Get(r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	assert.Empty(t, reopened.List())
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reminders.json")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.List())

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "open must not create the file")
}

func TestLoadMalformedFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"desc": "x", "datetime": "tomorrow", "repeat": "None"}]`), 0o644))

	err := NewStore(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Malformed())
}

func TestOpenMalformedMovesFileAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	clock := &fakeClock{now: baseTime}
	s, err := Open(path, WithClock(clock.Now))
	require.NoError(t, err)
	assert.Empty(t, s.List())

	backup := path + ".corrupt-20261016090000"
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	clock := &fakeClock{now: baseTime}
	// The parent of the reminders file is a regular file, so every write fails.
	s := NewStore(filepath.Join(blocker, "reminders.json"), WithClock(clock.Now))

	_, err := s.Add(Input{Description: "x", DueAt: clock.Now().Add(time.Hour)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, s.List())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, clock := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := s.Add(Input{Description: fmt.Sprintf("r%d", i), DueAt: clock.Now().Add(time.Hour)})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"reminders.json", "reminders.json.lock"}, names)
}

func TestSweepFiresAndAdvances(t *testing.T) {
	s, clock := newTestStore(t)

	once, err := s.Add(Input{Description: "once", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatNone})
	require.NoError(t, err)
	daily, err := s.Add(Input{Description: "daily", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatDaily})
	require.NoError(t, err)
	weekly, err := s.Add(Input{Description: "weekly", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatWeekly})
	require.NoError(t, err)
	later, err := s.Add(Input{Description: "later", DueAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	fired, err := s.Sweep(clock.Now())
	require.NoError(t, err)
	assert.Empty(t, fired, "nothing is due yet")

	clock.Advance(61 * time.Second)
	fired, err = s.Sweep(clock.Now())
	require.NoError(t, err)
	require.Len(t, fired, 3)

	byID := map[string]Fired{}
	for _, f := range fired {
		byID[f.ID] = f
		assert.True(t, f.FiredAt.Equal(clock.Now()))
	}
	assert.True(t, byID[once.ID].Next.IsZero())
	assert.True(t, byID[daily.ID].DueAt.Equal(daily.DueAt))
	assert.True(t, byID[daily.ID].Next.Equal(daily.DueAt.AddDate(0, 0, 1)))
	assert.True(t, byID[weekly.ID].Next.Equal(weekly.DueAt.AddDate(0, 0, 7)))

	_, err = s.Get(once.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	gotDaily, err := s.Get(daily.ID)
	require.NoError(t, err)
	assert.True(t, gotDaily.DueAt.Equal(daily.DueAt.Add(24*time.Hour)))

	gotWeekly, err := s.Get(weekly.ID)
	require.NoError(t, err)
	assert.True(t, gotWeekly.DueAt.Equal(weekly.DueAt.Add(7*24*time.Hour)))

	gotLater, err := s.Get(later.ID)
	require.NoError(t, err)
	assert.Equal(t, later, gotLater)

	// A second sweep at the same instant fires nothing.
	fired, err = s.Sweep(clock.Now())
	require.NoError(t, err)
	assert.Empty(t, fired)

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	assert.Equal(t, s.List(), reopened.List())
}

func TestSweepCatchUpAdvancesOnePeriodPerPass(t *testing.T) {
	s, clock := newTestStore(t)

	r, err := s.Add(Input{Description: "daily", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatDaily})
	require.NoError(t, err)

	clock.Advance(3*24*time.Hour + time.Hour)

	fired, err := s.Sweep(clock.Now())
	require.NoError(t, err)
	require.Len(t, fired, 1)

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	assert.True(t, got.DueAt.Equal(r.DueAt.AddDate(0, 0, 1)))
}

func TestConcurrentRemoveAndSweep(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, clock := newTestStore(t)
		r, err := s.Add(Input{Description: "race", DueAt: clock.Now().Add(time.Minute), Repeat: RepeatNone})
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		var (
			wg        sync.WaitGroup
			fired     []Fired
			sweepErr  error
			removeErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			fired, sweepErr = s.Sweep(clock.Now())
		}()
		go func() {
			defer wg.Done()
			removeErr = s.Remove(r.ID)
		}()
		wg.Wait()

		require.NoError(t, sweepErr)
		if removeErr == nil {
			assert.Empty(t, fired, "deleted reminder must not fire")
		} else {
			assert.ErrorIs(t, removeErr, ErrNotFound)
			require.Len(t, fired, 1, "fired reminder is already gone when delete runs")
		}
		assert.Empty(t, s.List())

		reopened, err := Open(s.Path())
		require.NoError(t, err)
		assert.Empty(t, reopened.List())
	}
}
