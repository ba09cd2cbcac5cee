package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"student-auth/internal/metrics"
	"student-auth/internal/password"
	"student-auth/internal/student"
)

var (
	ErrUsernameExists     = errors.New("username already registered")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// EventProducer publishes domain events to a message broker (NATS/Kafka).
type EventProducer interface {
	SendMessage(ctx context.Context, key string, value interface{}) error
	Broker() string
}

type Service struct {
	repo     student.Repository
	hasher   password.Hasher
	producer EventProducer
	metrics  *metrics.Metrics
	logger   *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService wires the registration and login flows. producer may be nil,
// in which case no events are published.
func NewService(repo student.Repository, hasher password.Hasher, producer EventProducer, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// Register creates a new student account. Uniqueness is checked before
// anything is written; a concurrent registration that slips past the checks
// is caught by the store's unique constraints and reported the same way.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*student.Student, error) {
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, student.ErrStudentNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, student.ErrStudentNotFound) {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Insert(ctx, req.Username, req.Email, hashedPassword)
	if err != nil {
		var cv *student.ConstraintViolationError
		if errors.As(err, &cv) {
			s.logger.WarnContext(ctx, "registration lost uniqueness race", "column", cv.Column)
			switch cv.Column {
			case "username":
				return nil, ErrUsernameExists
			case "email":
				return nil, ErrEmailExists
			}
		}
		return nil, fmt.Errorf("register student: %w", err)
	}

	s.metrics.RecordStudentRegistration(ctx)
	s.publishRegistered(ctx, created)

	return created, nil
}

// Login confirms that the credentials match a stored student. Unknown
// usernames and wrong passwords produce the same error, and both paths run
// one hash comparison.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*student.Student, error) {
	stud, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			s.hasher.Verify(req.Password, s.dummy())
			s.metrics.RecordLogin(ctx, false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, stud.HashedPassword) {
		s.metrics.RecordLogin(ctx, false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(ctx, true)
	return stud, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("student-auth-timing-equalizer")
		if err != nil {
			s.logger.Error("failed to prepare dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *Service) publishRegistered(ctx context.Context, stud *student.Student) {
	if s.producer == nil {
		return
	}

	event := StudentRegistered{
		ID:           stud.ID,
		Username:     stud.Username,
		Email:        stud.Email,
		RegisteredAt: time.Now().UTC(),
	}

	err := s.producer.SendMessage(ctx, stud.Username, event)
	s.metrics.RecordEventPublished(ctx, s.producer.Broker(), err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event", "broker", s.producer.Broker(), "error", err)
	}
}
