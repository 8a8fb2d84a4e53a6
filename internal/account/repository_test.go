package account

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestGetWithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "lifetime_spend", "points_balance"}).
			AddRow("u1", "u1@example.com", 750.0, int64(1200)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	u, err := NewPostgresRepository().GetWithTx(context.Background(), tx, "u1")
	require.NoError(t, err)
	require.Equal(t, 750.0, u.LifetimeSpend)
	require.Equal(t, int64(1200), u.PointsBalance)
}

func TestGetWithTx_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = NewPostgresRepository().GetWithTx(context.Background(), tx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustPointsWithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET points_balance`).
		WithArgs("u1", int64(-500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, NewPostgresRepository().AdjustPointsWithTx(context.Background(), tx, "u1", -500))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustPointsWithTx_WouldGoNegative(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	// the guard clause matched no row
	mock.ExpectExec(`UPDATE users SET points_balance`).
		WithArgs("u1", int64(-500)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = NewPostgresRepository().AdjustPointsWithTx(context.Background(), tx, "u1", -500)
	require.ErrorIs(t, err, ErrNotFound)
}
