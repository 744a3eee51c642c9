package common

import (
	"etix/src/db"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestTryReserveSeats(t *testing.T) {
	gdb, mock := db.NewMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events" SET "available_seats"=available_seats - .+ WHERE \(id = .+ AND is_active = .+ AND available_seats >= .+\) AND "events"."deleted_at" IS NULL`).
		WithArgs(2, 10, true, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := TryReserveSeats(gdb, 10, 2)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestTryReserveSeatsInsufficientCapacity(t *testing.T) {
	gdb, mock := db.NewMockDB()

	// The guarded update matches no row when capacity is short; the
	// counter is never driven negative.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events" SET "available_seats"=available_seats - .+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := TryReserveSeats(gdb, 10, 500)
	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReleaseSeatsClampsAtTotal(t *testing.T) {
	gdb, mock := db.NewMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events" SET "available_seats"=LEAST\(available_seats \+ .+, total_seats\) WHERE id = .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ReleaseSeats(gdb, 10, 1)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}
