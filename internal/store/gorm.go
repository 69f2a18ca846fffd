package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cgpa-backend/internal/model"
	"gorm.io/gorm"
)

// GormStore keeps records in a relational table through gorm.
// The *gorm.DB must be opened with TranslateError enabled.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByRollKey(ctx context.Context, rollKey string) (*model.StudentRecord, error) {
	var rec model.StudentRecord
	err := s.db.WithContext(ctx).Where("roll_key = ?", rollKey).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student %q: %w", rollKey, err)
	}
	return &rec, nil
}

func (s *GormStore) Create(ctx context.Context, rec *model.StudentRecord) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("create student %q: %w", rec.RollKey, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create student %q: %w", rec.RollKey, err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, rec *model.StudentRecord) error {
	res := s.db.WithContext(ctx).Model(&model.StudentRecord{}).
		Where("roll_key = ?", rec.RollKey).
		Updates(map[string]interface{}{
			"name":       rec.Name,
			"semester":   rec.Semester,
			"sgpa1":      rec.SGPA1,
			"sgpa2":      rec.SGPA2,
			"cgpa":       rec.CGPA,
			"created_at": rec.CreatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update student %q: %w", rec.RollKey, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update student %q: %w", rec.RollKey, ErrNotFound)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, q ListQuery) ([]model.StudentRecord, int64, error) {
	q = q.Normalize()
	dbQuery := s.db.WithContext(ctx).Model(&model.StudentRecord{})

	if q.Name != "" {
		dbQuery = dbQuery.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Semester > 0 {
		dbQuery = dbQuery.Where("semester = ?", q.Semester)
	}
	if q.CGPAMin > 0 {
		dbQuery = dbQuery.Where("cgpa >= ?", q.CGPAMin)
	}
	if q.CGPAMax > 0 {
		dbQuery = dbQuery.Where("cgpa <= ?", q.CGPAMax)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	dbQuery = dbQuery.Order(sortColumns[q.SortBy] + " " + q.SortOrder).Order("id asc")
	if q.Limit > 0 {
		dbQuery = dbQuery.Offset(q.offset()).Limit(q.Limit)
	}

	var students []model.StudentRecord
	if err := dbQuery.Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Drivers without an error translator still report the constraint by text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
