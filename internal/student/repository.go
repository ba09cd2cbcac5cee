package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"student-auth/internal/db"
	"student-auth/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrConstraintViolation = errors.New("unique constraint violation")
)

// ConstraintViolationError is returned by Insert when the store rejects a
// row because another student already holds the username or email.
// Column is "username", "email", or empty when the store did not say.
type ConstraintViolationError struct {
	Column string
	Err    error
}

func (e *ConstraintViolationError) Error() string {
	if e.Column == "" {
		return ErrConstraintViolation.Error()
	}
	return fmt.Sprintf("%s on students.%s", ErrConstraintViolation, e.Column)
}

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// Repository is the student record store. Records are created once and
// never updated or deleted.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Student, error)
	FindByEmail(ctx context.Context, email string) (*Student, error)
	Insert(ctx context.Context, username, email, passwordHash string) (*Student, error)
	Ping(ctx context.Context) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*Student, error) {
	return r.findBy(ctx, "username", username)
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Student, error) {
	return r.findBy(ctx, "email", email)
}

func (r *repository) findBy(ctx context.Context, column, value string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), nil)
		return nil, ErrStudentNotFound
	}
	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("find student by %s: %w", column, err)
	}
	return student, nil
}

func (r *repository) Insert(ctx context.Context, username, email, passwordHash string) (*Student, error) {
	start := time.Now()
	student := &Student{
		Username:       username,
		Email:          email,
		HashedPassword: passwordHash,
	}

	_, err := r.db.NewInsert().Model(student).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		if constraint, ok := db.UniqueViolation(err); ok {
			return nil, &ConstraintViolationError{Column: violatedColumn(constraint), Err: err}
		}
		return nil, fmt.Errorf("insert student: %w", err)
	}
	return student, nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// violatedColumn maps a driver constraint description such as
// "students_email_key" or "UNIQUE constraint failed: students.username"
// to the column it guards.
func violatedColumn(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	default:
		return ""
	}
}
