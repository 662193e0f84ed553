package regulation

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normas/internal/logger"
	apperrors "normas/pkg/errors"
)

type scriptedRepo struct {
	errs    []error
	inserts int
}

func (s *scriptedRepo) ExistingKeys(context.Context) (map[Key]struct{}, error) {
	return nil, nil
}

func (s *scriptedRepo) Insert(_ context.Context, reg *Regulation) error {
	err := s.errs[s.inserts]
	s.inserts++
	if err == nil {
		reg.ID = int64(s.inserts)
	}
	return err
}

func (s *scriptedRepo) GetByKey(context.Context, Key) (*Regulation, error) {
	return nil, nil
}

func batch(n int) []Regulation {
	regs := make([]Regulation, n)
	for i := range regs {
		regs[i] = Regulation{
			Title:      "Decreto 123",
			CreatedAt:  "2024-01-01",
			Entity:     "Agencia Nacional de Infraestructura",
			Components: []int64{7},
		}
	}
	return regs
}

func TestWrite(t *testing.T) {
	repo := &scriptedRepo{errs: []error{nil, nil}}
	writer := NewWriter(repo, logger.NopLogger())

	report, err := writer.Write(context.Background(), batch(2))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Components)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Failures)
}

func TestWrite_DuplicateSkipped(t *testing.T) {
	repo := &scriptedRepo{errs: []error{apperrors.ErrDuplicateKey, nil}}
	writer := NewWriter(repo, logger.NopLogger())

	report, err := writer.Write(context.Background(), batch(2))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Failures)
}

func TestWrite_PerRecordFailureContinues(t *testing.T) {
	rowErr := errors.New("value too long for type character varying(100)")
	repo := &scriptedRepo{errs: []error{rowErr, nil}}
	writer := NewWriter(repo, logger.NopLogger())

	report, err := writer.Write(context.Background(), batch(2))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, rowErr)
}

func TestWrite_ConnectionLossAborts(t *testing.T) {
	repo := &scriptedRepo{errs: []error{nil, driver.ErrBadConn, nil}}
	writer := NewWriter(repo, logger.NopLogger())

	report, err := writer.Write(context.Background(), batch(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))

	// The third record is never attempted.
	assert.Equal(t, 2, repo.inserts)
	assert.Equal(t, 1, report.Inserted)
}

func TestWrite_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &scriptedRepo{errs: []error{nil}}
	writer := NewWriter(repo, logger.NopLogger())

	_, err := writer.Write(ctx, batch(1))
	require.Error(t, err)
	assert.Equal(t, 0, repo.inserts)
}
