package student_test

import (
	"context"
	"errors"
	"testing"

	"student-auth/internal/metrics"
	"student-auth/internal/student"
	"student-auth/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SQLite(t *testing.T) {
	database := testdb.NewSQLite(t, (*student.Student)(nil))
	repo := student.NewRepository(database, metrics.NewMock())
	ctx := context.Background()

	t.Run("Insert_AssignsID", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		first, err := repo.Insert(ctx, "alice", "a@x.com", "$2a$04$hash-one")
		require.NoError(t, err)
		second, err := repo.Insert(ctx, "bob", "b@x.com", "$2a$04$hash-two")
		require.NoError(t, err)

		assert.NotZero(t, first.ID)
		assert.NotZero(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "alice", first.Username)
		assert.Equal(t, "a@x.com", first.Email)
		assert.Equal(t, "$2a$04$hash-one", first.HashedPassword)
	})

	t.Run("FindByUsername", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		created, err := repo.Insert(ctx, "carol", "c@x.com", "hash")
		require.NoError(t, err)

		found, err := repo.FindByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "c@x.com", found.Email)
		assert.Equal(t, "hash", found.HashedPassword)
	})

	t.Run("FindByEmail", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		created, err := repo.Insert(ctx, "dave", "d@x.com", "hash")
		require.NoError(t, err)

		found, err := repo.FindByEmail(ctx, "d@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "dave", found.Username)
	})

	t.Run("Find_NotFound", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, student.ErrStudentNotFound)

		_, err = repo.FindByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})

	t.Run("Find_IsExactMatch", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		_, err := repo.Insert(ctx, "erin", "e@x.com", "hash")
		require.NoError(t, err)

		_, err = repo.FindByUsername(ctx, "eri")
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
		_, err = repo.FindByUsername(ctx, "erin' OR '1'='1")
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})

	t.Run("Insert_DuplicateUsername", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		_, err := repo.Insert(ctx, "frank", "f1@x.com", "hash")
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "frank", "f2@x.com", "hash")
		require.ErrorIs(t, err, student.ErrConstraintViolation)

		var cv *student.ConstraintViolationError
		require.True(t, errors.As(err, &cv))
		assert.Equal(t, "username", cv.Column)
	})

	t.Run("Insert_DuplicateEmail", func(t *testing.T) {
		testdb.CleanupTables(t, database, "students")

		_, err := repo.Insert(ctx, "gina", "g@x.com", "hash")
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "gina2", "g@x.com", "hash")
		require.ErrorIs(t, err, student.ErrConstraintViolation)

		var cv *student.ConstraintViolationError
		require.True(t, errors.As(err, &cv))
		assert.Equal(t, "email", cv.Column)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestConstraintViolationError_Message(t *testing.T) {
	err := &student.ConstraintViolationError{Column: "email"}
	assert.Equal(t, "unique constraint violation on students.email", err.Error())

	err = &student.ConstraintViolationError{}
	assert.Equal(t, "unique constraint violation", err.Error())
	assert.ErrorIs(t, err, student.ErrConstraintViolation)
}
