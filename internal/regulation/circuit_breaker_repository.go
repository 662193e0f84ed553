package regulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"normas/internal/config"
	"normas/pkg/circuitbreaker"
	apperrors "normas/pkg/errors"
)

// CircuitBreakerRepository shields the database from repeated scheduled
// runs while it is unhealthy. Duplicate-key outcomes are expected business
// results and do not count as breaker failures.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{
			repo: repo,
			cb:   nil,
		}
	}

	cbConfig := circuitbreaker.DefaultConfig("postgres-regulations")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) ExistingKeys(ctx context.Context) (map[Key]struct{}, error) {
	if r.cb == nil {
		return r.repo.ExistingKeys(ctx)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.ExistingKeys(ctx)
	})

	r.cb.RecordRequest(err == nil)

	if err != nil {
		return nil, r.wrapOpenState(err)
	}

	keys, ok := result.(map[Key]struct{})
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}

	return keys, nil
}

func (r *CircuitBreakerRepository) Insert(ctx context.Context, reg *Regulation) error {
	if r.cb == nil {
		return r.repo.Insert(ctx, reg)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		insertErr := r.repo.Insert(ctx, reg)
		if insertErr != nil && errors.Is(insertErr, apperrors.ErrDuplicateKey) {
			// Surface the duplicate without tripping the breaker.
			return insertErr, nil
		}
		return nil, insertErr
	})

	r.cb.RecordRequest(err == nil)

	if err != nil {
		return r.wrapOpenState(err)
	}

	if dupErr, ok := result.(error); ok && dupErr != nil {
		return dupErr
	}

	return nil
}

func (r *CircuitBreakerRepository) GetByKey(ctx context.Context, key Key) (*Regulation, error) {
	if r.cb == nil {
		return r.repo.GetByKey(ctx, key)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.GetByKey(ctx, key)
	})

	r.cb.RecordRequest(err == nil)

	if err != nil {
		return nil, r.wrapOpenState(err)
	}

	reg, ok := result.(*Regulation)
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}

	return reg, nil
}

func (r *CircuitBreakerRepository) wrapOpenState(err error) error {
	if r.cb.IsOpen() {
		return fmt.Errorf("circuit breaker is open for %s: %w", r.cb.Name(), err)
	}
	return err
}

// State exposes the breaker state for diagnostics.
func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}
