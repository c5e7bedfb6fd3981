package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spboyer/social-media-post-ge/internal/domain"
)

func namedValue(userID, key, raw string, updatedAt time.Time) domain.NamedValue {
	return domain.NamedValue{
		UserID:    userID,
		Key:       key,
		Value:     json.RawMessage(raw),
		UpdatedAt: updatedAt,
	}
}

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var namedValueColumns = []string{"user_id", "key", "value", "updated_at"}

func TestGetHit(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(namedValueColumns).
		AddRow("default-user", "selected-platforms", []byte(`["twitter"]`), now)
	mock.ExpectQuery("SELECT .+ FROM named_values WHERE user_id = \\$1 AND key = \\$2").
		WithArgs("default-user", "selected-platforms").
		WillReturnRows(rows)

	nv, err := NewWithDB(db).Get(context.Background(), "default-user", "selected-platforms")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if nv == nil {
		t.Fatal("Get = nil, want value")
	}
	if string(nv.Value) != `["twitter"]` {
		t.Errorf("value = %s", nv.Value)
	}
	if !nv.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", nv.UpdatedAt, now)
	}
}

func TestGetMiss(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM named_values WHERE user_id = \\$1 AND key = \\$2").
		WithArgs("default-user", "absent").
		WillReturnRows(sqlmock.NewRows(namedValueColumns))

	nv, err := NewWithDB(db).Get(context.Background(), "default-user", "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if nv != nil {
		t.Errorf("Get = %+v, want nil for missing key", nv)
	}
}

func TestPut(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO named_values").
		WithArgs("default-user", "saved-generations", []byte(`[]`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v := namedValue("default-user", "saved-generations", `[]`, now)
	if err := NewWithDB(db).Put(context.Background(), &v); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestPutEmptyValueStoredAsNull(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO named_values").
		WithArgs("default-user", "cleared", []byte("null"), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v := namedValue("default-user", "cleared", "", now)
	v.Value = nil
	if err := NewWithDB(db).Put(context.Background(), &v); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestDelete(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM named_values WHERE user_id = \\$1 AND key = \\$2").
		WithArgs("default-user", "tmp").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := NewWithDB(db).Delete(context.Background(), "default-user", "tmp")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !found {
		t.Error("Delete = false, want true for deleted row")
	}
}

func TestDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM named_values WHERE user_id = \\$1 AND key = \\$2").
		WithArgs("default-user", "absent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := NewWithDB(db).Delete(context.Background(), "default-user", "absent")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found {
		t.Error("Delete = true, want false for missing row")
	}
}

func TestList(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(namedValueColumns).
		AddRow("alice", "a-key", []byte(`1`), now).
		AddRow("alice", "b-key", []byte(`2`), now)
	mock.ExpectQuery("SELECT .+ FROM named_values WHERE user_id = \\$1 ORDER BY key").
		WithArgs("alice").
		WillReturnRows(rows)

	values, err := NewWithDB(db).List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(values) != 2 || values[0].Key != "a-key" || values[1].Key != "b-key" {
		t.Errorf("List = %+v", values)
	}
}
