package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// CounterCache is an optional read-through cache for GetCurrentCounter.
type CounterCache interface {
	GetCounter(ctx context.Context, year int, codeType string) (int64, bool, error)
	SetCounter(ctx context.Context, year int, codeType string, value int64, ttl time.Duration) error
	DeleteCounter(ctx context.Context, year int, codeType string) error
}

// CodeService allocates human readable sequence codes per (year, type).
// Allocation takes a row lock on the counter, so concurrent callers for the
// same partition queue behind each other and never share a value.
type CodeService struct {
	db          *gorm.DB
	counterRepo *repository.CounterRepository
	cache       CounterCache
	cacheTTL    time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

type CodeServiceOption func(*CodeService)

func WithCounterCache(cache CounterCache, ttl time.Duration) CodeServiceOption {
	return func(s *CodeService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithClock overrides the time source used to pick the counter year.
func WithClock(now func() time.Time) CodeServiceOption {
	return func(s *CodeService) {
		s.now = now
	}
}

func NewCodeService(db *gorm.DB, counterRepo *repository.CounterRepository, log zerolog.Logger, opts ...CodeServiceOption) *CodeService {
	s := &CodeService{
		db:          db,
		counterRepo: counterRepo,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetNextCode allocates the next code in its own transaction.
func (s *CodeService) GetNextCode(ctx context.Context, codeType model.CodeType) (string, error) {
	var (
		code  string
		year  int
		value int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		code, year, value, err = s.allocate(ctx, tx, codeType)
		return err
	})
	if err != nil {
		return "", err
	}

	s.cacheCounter(ctx, year, codeType, value)
	return code, nil
}

// NextCodeTx allocates inside the caller's transaction. The increment rolls
// back with it. Callers call forget once the transaction has committed.
func (s *CodeService) NextCodeTx(ctx context.Context, tx *gorm.DB, codeType model.CodeType) (string, error) {
	code, _, _, err := s.allocate(ctx, tx, codeType)
	return code, err
}

func (s *CodeService) allocate(ctx context.Context, tx *gorm.DB, codeType model.CodeType) (string, int, int64, error) {
	if !codeType.Valid() {
		return "", 0, 0, fmt.Errorf("unknown code type %q", codeType)
	}

	year := s.now().Year()
	counters := s.counterRepo.WithTx(tx)

	if err := counters.Ensure(ctx, year, codeType); err != nil {
		return "", 0, 0, fmt.Errorf("ensure counter %s/%d: %w", codeType, year, err)
	}
	counter, err := counters.Lock(ctx, year, codeType)
	if err != nil {
		return "", 0, 0, fmt.Errorf("lock counter %s/%d: %w", codeType, year, err)
	}

	next := counter.Current + 1
	if err := counters.SetCurrent(ctx, year, codeType, next); err != nil {
		return "", 0, 0, fmt.Errorf("advance counter %s/%d: %w", codeType, year, err)
	}

	code := codeType.Format(year, next)
	s.log.Debug().Str("type", string(codeType)).Int("year", year).Int64("value", next).Str("code", code).Msg("code allocated")
	return code, year, next, nil
}

// GetCurrentCounter returns the last allocated value for this year without
// incrementing. The value may be stale under concurrency.
func (s *CodeService) GetCurrentCounter(ctx context.Context, codeType model.CodeType) (int64, error) {
	if !codeType.Valid() {
		return 0, fmt.Errorf("unknown code type %q", codeType)
	}
	year := s.now().Year()

	if s.cache != nil {
		value, ok, err := s.cache.GetCounter(ctx, year, string(codeType))
		if err != nil {
			s.log.Warn().Err(err).Str("type", string(codeType)).Msg("counter cache read failed")
		} else if ok {
			return value, nil
		}
	}

	counter, err := s.counterRepo.Get(ctx, year, codeType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	s.cacheCounter(ctx, year, codeType, counter.Current)
	return counter.Current, nil
}

func (s *CodeService) cacheCounter(ctx context.Context, year int, codeType model.CodeType, value int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetCounter(ctx, year, string(codeType), value, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("type", string(codeType)).Msg("counter cache write failed")
	}
}

// forget drops the cached counter for this year so the next peek reads the
// committed value from the store.
func (s *CodeService) forget(ctx context.Context, codeType model.CodeType) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCounter(ctx, s.now().Year(), string(codeType)); err != nil {
		s.log.Warn().Err(err).Str("type", string(codeType)).Msg("counter cache invalidation failed")
	}
}
