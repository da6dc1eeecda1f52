package remote

import (
	"context"
	"errors"
	"testing"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return New(db), mock
}

var errConnReset = errors.New("connection reset by peer")

func TestMock_GetPropagatesStorageError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "guides"`).WillReturnError(errConnReset)

	_, err := s.Guides().Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, errConnReset)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_GetMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "provinces"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Provinces().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_ListPropagatesStorageError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "tours" WHERE status = \$1`).
		WithArgs("active").
		WillReturnError(errConnReset)

	_, err := s.Tours().List(context.Background(), repository.ListQuery{Status: model.StatusActive})
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_CreateRejectsTakenName(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := s.Companies().Create(context.Background(), &model.Company{MasterBase: model.MasterBase{Name: "Vietravel"}})
	assert.True(t, repository.IsDuplicateName(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_UpdateRollsBackOnMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "shoppings"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.Shoppings().ToggleStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_DeleteHardAndSoft(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "guides"`).WillReturnError(errConnReset)
	err := s.Guides().Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, errConnReset)

	mock.ExpectExec(`DELETE FROM "guides"`).WillReturnResult(sqlmock.NewResult(0, 0))
	err = s.Guides().Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mock.ExpectExec(`UPDATE "detailed_expenses" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.DetailedExpenses().Delete(ctx, uuid.New()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_ClearRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tour_destinations"`).WillReturnError(errConnReset)
	mock.ExpectRollback()

	err := s.ClearAllData(context.Background())
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}
