package service

import (
	"context"
	"errors"
	"math"
	"time"

	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/model"
	"cgpa-backend/internal/store"
)

var ErrMissingRollKey = errors.New("roll and number are required")

// ConfirmOverwrite is the confirmation value that allows an update.
const ConfirmOverwrite = "Yes"

const (
	MsgCreated     = "Data saved successfully!"
	MsgUpdated     = "Data updated successfully!"
	MsgExists      = "User already exists."
	MsgStoreFailed = "CGPA calculated, but the record could not be saved."
	MsgNoRollKey   = "CGPA calculated. Provide roll and number to save the record."
)

type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeNeedsConfirmation
	OutcomeStoreFailed
	OutcomeNotSaved
)

func (o Outcome) Message() string {
	switch o {
	case OutcomeCreated:
		return MsgCreated
	case OutcomeUpdated:
		return MsgUpdated
	case OutcomeNeedsConfirmation:
		return MsgExists
	case OutcomeStoreFailed:
		return MsgStoreFailed
	default:
		return MsgNoRollKey
	}
}

// SubmitResult always carries the CGPA, whatever happened in the store.
type SubmitResult struct {
	CGPA         float64
	Outcome      Outcome
	ExistingName string
}

type StudentService struct {
	store store.Store
	log   *logger.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewStudentService(st store.Store, log *logger.Logger, loc *time.Location) *StudentService {
	if loc == nil {
		loc = time.UTC
	}
	return &StudentService{
		store: st,
		log:   log.With("service", "StudentService"),
		loc:   loc,
		now:   time.Now,
	}
}

// SetClock replaces the time source used for record timestamps.
func (s *StudentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *StudentService) timestamp() string {
	return s.now().In(s.loc).Format(model.TimestampLayout)
}

// Submit computes the CGPA and applies the create-or-confirm-overwrite
// protocol. An existing record changes only when sub.Confirmation is "Yes".
// Storage errors are logged and reported through OutcomeStoreFailed.
func (s *StudentService) Submit(ctx context.Context, sub model.Submission) SubmitResult {
	res := SubmitResult{CGPA: ComputeCGPA(sub.SGPA1, sub.Credit1, sub.SGPA2, sub.Credit2)}

	rollKey := sub.RollKey()
	if rollKey == "" {
		res.Outcome = OutcomeNotSaved
		return res
	}
	log := s.log.With("roll_key", rollKey)

	existing, err := s.store.FindByRollKey(ctx, rollKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := s.store.Create(ctx, s.newRecord(sub, res.CGPA)); err != nil {
			log.Error("Failed to save student record", "error", err)
			res.Outcome = OutcomeStoreFailed
			return res
		}
		log.Info("Student record created")
		res.Outcome = OutcomeCreated
	case err != nil:
		log.Error("Failed to look up student record", "error", err)
		res.Outcome = OutcomeStoreFailed
	case sub.Confirmation != ConfirmOverwrite:
		res.Outcome = OutcomeNeedsConfirmation
		res.ExistingName = existing.Name
	default:
		existing.Name = sub.Name
		existing.Semester = sub.Semester
		existing.SGPA1 = sub.SGPA1
		existing.SGPA2 = sub.SGPA2
		existing.CGPA = res.CGPA
		existing.CreatedAt = s.timestamp()
		if err := s.store.Update(ctx, existing); err != nil {
			log.Error("Failed to update student record", "error", err)
			res.Outcome = OutcomeStoreFailed
			return res
		}
		log.Info("Student record updated")
		res.Outcome = OutcomeUpdated
	}
	return res
}

// Insert creates the record for a new roll key and never overwrites. It
// returns store.ErrDuplicate when the key exists.
func (s *StudentService) Insert(ctx context.Context, sub model.Submission) (*model.StudentRecord, error) {
	if sub.RollKey() == "" {
		return nil, ErrMissingRollKey
	}
	rec := s.newRecord(sub, ComputeCGPA(sub.SGPA1, sub.Credit1, sub.SGPA2, sub.Credit2))
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *StudentService) newRecord(sub model.Submission, cgpa float64) *model.StudentRecord {
	return &model.StudentRecord{
		RollKey:   sub.RollKey(),
		Name:      sub.Name,
		Roll:      sub.Roll,
		Number:    sub.Number,
		Semester:  sub.Semester,
		SGPA1:     sub.SGPA1,
		SGPA2:     sub.SGPA2,
		CGPA:      cgpa,
		CreatedAt: s.timestamp(),
	}
}

func (s *StudentService) GetStudent(ctx context.Context, rollKey string) (*model.StudentRecord, error) {
	return s.store.FindByRollKey(ctx, rollKey)
}

func (s *StudentService) ListStudents(ctx context.Context, q store.ListQuery) ([]model.StudentRecord, int64, int, error) {
	q = q.Normalize()
	students, totalCount, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := 1
	if q.Limit > 0 {
		totalPages = int(math.Ceil(float64(totalCount) / float64(q.Limit)))
	}
	return students, totalCount, totalPages, nil
}

func (s *StudentService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
