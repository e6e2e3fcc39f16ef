// Package events вычисляет идентификатор "виртуального месяца" хакатона и его дедлайн.
package events

import (
	"errors"
	"fmt"
	"time"
)

// idLayout - формат идентификатора хакатона: один хакатон на календарный месяц (UTC).
const idLayout = "2006-01"

var ErrInvalidEventID = errors.New("invalid hackathon id")

// CurrentID возвращает идентификатор хакатона для месяца, в который попадает now.
func CurrentID(now time.Time) string {
	return now.UTC().Format(idLayout)
}

// Current возвращает идентификатор текущего хакатона по системным часам.
func Current() string {
	return CurrentID(time.Now())
}

// Validate проверяет, что id имеет вид YYYY-MM.
func Validate(id string) error {
	_, err := parse(id)
	return err
}

// Cutoff возвращает последний момент хакатона: 23:59:59 UTC последнего дня месяца.
func Cutoff(id string) (time.Time, error) {
	start, err := parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 1, 0).Add(-time.Second), nil
}

func parse(id string) (time.Time, error) {
	t, err := time.Parse(idLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM", ErrInvalidEventID, id)
	}
	// id должен совпадать с каноническим представлением
	if t.Format(idLayout) != id {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM", ErrInvalidEventID, id)
	}
	return t.UTC(), nil
}
