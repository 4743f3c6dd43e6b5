package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/store"
)

func TestInTx_IssuesRollbackWhenFnFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := newStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE newsletters SET").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = s.InTx(context.Background(), func(tx store.Tx) error {
		n := seedlessNewsletter()
		return tx.SaveNewsletter(context.Background(), n)
	})
	if err == nil {
		t.Fatal("expected error from failed statement")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := newStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM subscribers").WithArgs("sub-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = s.InTx(context.Background(), func(tx store.Tx) error {
		return tx.DeleteSubscriber(context.Background(), "sub-1")
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func seedlessNewsletter() *domain.Newsletter {
	return domain.NewNewsletter("nl-mock")
}
