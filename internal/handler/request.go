package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cgpa-backend/internal/model"
	"cgpa-backend/internal/service"
)

const maxBodyBytes = 1 << 20

var errNotObject = errors.New("request body must be a JSON object")

// fields holds a JSON object whose values are coerced one by one, so a number
// may arrive as 3.5 or "3.5".
type fields map[string]json.RawMessage

func decodeFields(w http.ResponseWriter, r *http.Request) (fields, error) {
	var body fields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if body == nil {
		return nil, errNotObject
	}
	return body, nil
}

// text returns the field as a string. Absent and null fields are empty.
func (f fields) text(name string) (string, error) {
	raw, ok := f[name]
	if !ok {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	c := raw[0]
	switch {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return string(raw), nil
	default:
		return "", fmt.Errorf("%s must be a string or a number", name)
	}
}

func (f fields) floatField(name string, def float64) (float64, error) {
	s, err := f.text(name)
	if err != nil {
		return 0, err
	}
	v, err := service.ParseFloatField(s, def)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (f fields) intField(name string, def int) (int, error) {
	s, err := f.text(name)
	if err != nil {
		return 0, err
	}
	v, err := service.ParseIntField(s, def)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// submission coerces the calculator payload, applying the SGPA and credit
// defaults.
func (f fields) submission() (model.Submission, error) {
	var sub model.Submission
	var err error

	texts := []struct {
		name string
		dst  *string
	}{
		{"name", &sub.Name},
		{"roll", &sub.Roll},
		{"number", &sub.Number},
		{"confirmation", &sub.Confirmation},
	}
	for _, t := range texts {
		if *t.dst, err = f.text(t.name); err != nil {
			return sub, err
		}
	}
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Roll = strings.TrimSpace(sub.Roll)
	sub.Number = strings.TrimSpace(sub.Number)

	if sub.Semester, err = f.intField("semester", 0); err != nil {
		return sub, err
	}
	if sub.SGPA1, err = f.floatField("sgpa1", service.DefaultSGPA); err != nil {
		return sub, err
	}
	if sub.SGPA2, err = f.floatField("sgpa2", service.DefaultSGPA); err != nil {
		return sub, err
	}
	if sub.Credit1, err = f.intField("credit1", service.DefaultCredit); err != nil {
		return sub, err
	}
	if sub.Credit2, err = f.intField("credit2", service.DefaultCredit); err != nil {
		return sub, err
	}
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
