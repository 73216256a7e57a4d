package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	require.ErrorIs(t, &ValidationError{Message: "x"}, ErrInvalidInput)
	require.ErrorIs(t, &ConflictError{Message: "x"}, ErrConflict)
	require.ErrorIs(t, &NotFoundError{Entity: "job", ID: "1"}, ErrNotFound)

	wrapped := fmt.Errorf("create: %w", &ConflictError{Message: "x"})
	require.ErrorIs(t, wrapped, ErrConflict)
	require.NotErrorIs(t, wrapped, ErrNotFound)
}

func TestTranslateStoreError(t *testing.T) {
	id := uuid.New()

	require.NoError(t, translateStoreError(nil, "job", id))

	err := translateStoreError(gorm.ErrRecordNotFound, "job", id)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "job", nf.Entity)
	require.Equal(t, id.String(), nf.ID)

	require.ErrorIs(t, translateStoreError(gorm.ErrDuplicatedKey, "invoice", id), ErrConflict)
	require.ErrorIs(t, translateStoreError(&pgconn.PgError{Code: "23P01"}, "shift", id), ErrConflict)
	require.ErrorIs(t, translateStoreError(model.ShiftLifecycle.Validate(model.ShiftStatusDraft, model.ShiftStatusCompleted), "shift", id), ErrInvalidInput)

	other := errors.New("boom")
	require.Equal(t, other, translateStoreError(other, "job", id))
}
