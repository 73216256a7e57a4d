package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

func TestGetNextCodeSequential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.codes.GetNextCode(ctx, model.CodeTypeJob)
	require.NoError(t, err)
	second, err := env.codes.GetNextCode(ctx, model.CodeTypeJob)
	require.NoError(t, err)

	assert.Equal(t, "JOB-2025-0001", first)
	assert.Equal(t, "JOB-2025-0002", second)
}

func TestGetNextCodeWithoutYearInFormat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	code, err := env.codes.GetNextCode(ctx, model.CodeTypeVehicle)
	require.NoError(t, err)
	assert.Equal(t, "VEH-0001", code)

	var counter model.Counter
	require.NoError(t, env.db.Where("year = ? AND type = ?", testYear, model.CodeTypeVehicle).First(&counter).Error)
	assert.Equal(t, int64(1), counter.Current)
}

func TestGetNextCodePartitionsByYearAndType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.codes.GetNextCode(ctx, model.CodeTypeInvoice)
	require.NoError(t, err)
	shift, err := env.codes.GetNextCode(ctx, model.CodeTypeShift)
	require.NoError(t, err)
	assert.Equal(t, "SHF-2025-0001", shift)

	env.codes.now = func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	next, err := env.codes.GetNextCode(ctx, model.CodeTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", next)
}

func TestGetNextCodeConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const callers = 25
	var (
		mu    sync.Mutex
		codes []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			code, err := env.codes.GetNextCode(gctx, model.CodeTypeJob)
			if err != nil {
				return err
			}
			mu.Lock()
			codes = append(codes, code)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Strings(codes)
	require.Len(t, codes, callers)
	for i, code := range codes {
		assert.Equal(t, fmt.Sprintf("JOB-2025-%04d", i+1), code)
	}
}

func TestNextCodeTxRollsBackWithCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := env.db.Transaction(func(tx *gorm.DB) error {
		code, err := env.codes.NextCodeTx(ctx, tx, model.CodeTypeInvoice)
		require.NoError(t, err)
		require.Equal(t, "INV-2025-0001", code)
		return boom
	})
	require.ErrorIs(t, err, boom)

	current, err := env.codes.GetCurrentCounter(ctx, model.CodeTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)

	code, err := env.codes.GetNextCode(ctx, model.CodeTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0001", code)
}

func TestGetNextCodeUnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.codes.GetNextCode(context.Background(), model.CodeType("XYZ"))
	require.Error(t, err)
	_, err = env.codes.GetCurrentCounter(context.Background(), model.CodeType("XYZ"))
	require.Error(t, err)
}

type fakeCounterCache struct {
	mu     sync.Mutex
	values map[string]int64
	reads  int
	fail   bool
}

func newFakeCounterCache() *fakeCounterCache {
	return &fakeCounterCache{values: map[string]int64{}}
}

func (f *fakeCounterCache) GetCounter(_ context.Context, year int, codeType string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.fail {
		return 0, false, errors.New("cache down")
	}
	v, ok := f.values[fmt.Sprintf("%d:%s", year, codeType)]
	return v, ok, nil
}

func (f *fakeCounterCache) SetCounter(_ context.Context, year int, codeType string, value int64, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("cache down")
	}
	f.values[fmt.Sprintf("%d:%s", year, codeType)] = value
	return nil
}

func (f *fakeCounterCache) DeleteCounter(_ context.Context, year int, codeType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("cache down")
	}
	delete(f.values, fmt.Sprintf("%d:%s", year, codeType))
	return nil
}

func TestGetCurrentCounterReadsThroughCache(t *testing.T) {
	cache := newFakeCounterCache()
	env := newTestEnv(t, WithCounterCache(cache, time.Minute))
	ctx := context.Background()

	current, err := env.codes.GetCurrentCounter(ctx, model.CodeTypeProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)

	_, err = env.codes.GetNextCode(ctx, model.CodeTypeProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cache.values["2025:PRD"])

	cache.values["2025:PRD"] = 42
	current, err = env.codes.GetCurrentCounter(ctx, model.CodeTypeProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(42), current, "served from cache")

	cache.fail = true
	current, err = env.codes.GetCurrentCounter(ctx, model.CodeTypeProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current, "falls back to the store")
}

func TestCachedCounterFollowsCommittedAllocations(t *testing.T) {
	cache := newFakeCounterCache()
	env := newTestEnv(t, WithCounterCache(cache, time.Hour))
	ctx := context.Background()

	peek := func(codeType model.CodeType) int64 {
		t.Helper()
		current, err := env.codes.GetCurrentCounter(ctx, codeType)
		require.NoError(t, err)
		return current
	}

	require.Equal(t, int64(0), peek(model.CodeTypeShift))
	require.Equal(t, int64(0), peek(model.CodeTypeVehicle))

	d := env.driver(t)
	env.shift(t, d.ID, at(8, 0), at(12, 0))
	assert.Equal(t, int64(1), peek(model.CodeTypeShift))

	env.vehicle(t)
	assert.Equal(t, int64(1), peek(model.CodeTypeVehicle))

	_, err := env.shifts.Create(ctx, CreateShiftInput{DriverID: d.ID, StartTime: at(9, 0), EndTime: at(10, 0)})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, int64(1), peek(model.CodeTypeShift), "a rolled back allocation is not visible")
}
