package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cgpa-backend/internal/model"
	"github.com/go-redis/redis/v8"
)

const (
	studentsKey      = "students"     // Set: every roll key
	studentSeqKey    = "students:seq" // Counter for record IDs
	studentKeyPrefix = "student:"     // Hash prefix: student:{rollKey}
)

func studentKey(rollKey string) string {
	return studentKeyPrefix + rollKey
}

// RedisStore keeps each record in a hash and tracks roll keys in a set.
// SADD on the set is the uniqueness check.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) FindByRollKey(ctx context.Context, rollKey string) (*model.StudentRecord, error) {
	data, err := s.client.HGetAll(ctx, studentKey(rollKey)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find student %q: %w", rollKey, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return recordFromHash(data)
}

func (s *RedisStore) Create(ctx context.Context, rec *model.StudentRecord) error {
	added, err := s.client.SAdd(ctx, studentsKey, rec.RollKey).Result()
	if err != nil {
		return fmt.Errorf("create student %q: %w", rec.RollKey, err)
	}
	if added == 0 {
		return fmt.Errorf("create student %q: %w", rec.RollKey, ErrDuplicate)
	}

	id, err := s.client.Incr(ctx, studentSeqKey).Result()
	if err == nil {
		rec.ID = uint(id)
		err = s.client.HSet(ctx, studentKey(rec.RollKey), hashFromRecord(rec)).Err()
	}
	if err != nil {
		// Release the claimed key so a later submission can retry.
		s.client.SRem(ctx, studentsKey, rec.RollKey)
		return fmt.Errorf("create student %q: %w", rec.RollKey, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, rec *model.StudentRecord) error {
	key := studentKey(rec.RollKey)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("update student %q: %w", rec.RollKey, err)
	}
	if n == 0 {
		return fmt.Errorf("update student %q: %w", rec.RollKey, ErrNotFound)
	}
	err = s.client.HSet(ctx, key, map[string]interface{}{
		"name":      rec.Name,
		"semester":  rec.Semester,
		"sgpa1":     formatFloat(rec.SGPA1),
		"sgpa2":     formatFloat(rec.SGPA2),
		"cgpa":      formatFloat(rec.CGPA),
		"createdAt": rec.CreatedAt,
	}).Err()
	if err != nil {
		return fmt.Errorf("update student %q: %w", rec.RollKey, err)
	}
	return nil
}

// List loads every record and filters in memory. The record set is small.
func (s *RedisStore) List(ctx context.Context, q ListQuery) ([]model.StudentRecord, int64, error) {
	q = q.Normalize()
	keys, err := s.client.SMembers(ctx, studentsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	students := make([]model.StudentRecord, 0, len(keys))
	for _, rollKey := range keys {
		rec, err := s.FindByRollKey(ctx, rollKey)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if matches(rec, q) {
			students = append(students, *rec)
		}
	}

	sortRecords(students, q.SortBy, q.SortOrder == "desc")
	total := int64(len(students))
	if q.Limit > 0 {
		start := q.offset()
		if start > len(students) {
			start = len(students)
		}
		end := start + q.Limit
		if end > len(students) {
			end = len(students)
		}
		students = students[start:end]
	}
	return students, total, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func matches(rec *model.StudentRecord, q ListQuery) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.Semester > 0 && rec.Semester != q.Semester {
		return false
	}
	if q.CGPAMin > 0 && rec.CGPA < q.CGPAMin {
		return false
	}
	if q.CGPAMax > 0 && rec.CGPA > q.CGPAMax {
		return false
	}
	return true
}

func sortRecords(students []model.StudentRecord, by string, desc bool) {
	less := func(a, b model.StudentRecord) bool {
		switch by {
		case "roll_key":
			return a.RollKey < b.RollKey
		case "semester":
			return a.Semester < b.Semester
		case "cgpa":
			return a.CGPA < b.CGPA
		case "created_at":
			return a.CreatedAt < b.CreatedAt
		default:
			return a.Name < b.Name
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		if desc {
			return less(students[j], students[i])
		}
		return less(students[i], students[j])
	})
}

func hashFromRecord(rec *model.StudentRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":        rec.ID,
		"rollKey":   rec.RollKey,
		"name":      rec.Name,
		"roll":      rec.Roll,
		"number":    rec.Number,
		"semester":  rec.Semester,
		"sgpa1":     formatFloat(rec.SGPA1),
		"sgpa2":     formatFloat(rec.SGPA2),
		"cgpa":      formatFloat(rec.CGPA),
		"createdAt": rec.CreatedAt,
	}
}

func recordFromHash(data map[string]string) (*model.StudentRecord, error) {
	rec := &model.StudentRecord{
		RollKey:   data["rollKey"],
		Name:      data["name"],
		Roll:      data["roll"],
		Number:    data["number"],
		CreatedAt: data["createdAt"],
	}
	var err error
	var id uint64
	if id, err = strconv.ParseUint(data["id"], 10, 64); err != nil {
		return nil, fmt.Errorf("decode student %q id: %w", rec.RollKey, err)
	}
	rec.ID = uint(id)
	if rec.Semester, err = strconv.Atoi(data["semester"]); err != nil {
		return nil, fmt.Errorf("decode student %q semester: %w", rec.RollKey, err)
	}
	for field, dst := range map[string]*float64{"sgpa1": &rec.SGPA1, "sgpa2": &rec.SGPA2, "cgpa": &rec.CGPA} {
		if *dst, err = strconv.ParseFloat(data[field], 64); err != nil {
			return nil, fmt.Errorf("decode student %q %s: %w", rec.RollKey, field, err)
		}
	}
	return rec, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
