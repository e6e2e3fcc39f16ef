package repositories

import (
	"encoding/json"
	"time"

	"github.com/Dosada05/hackathon-teams/db"
)

// Декодеры полей терпимы к представлению: Firestore возвращает int64/time.Time/[]interface{},
// JSONB-хранилище - float64/строки RFC3339.

func stringField(f db.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}

func stringsField(f db.Fields, key string) []string {
	switch v := f[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func intField(f db.Fields, key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func boolField(f db.Fields, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func timeField(f db.Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	default:
		return time.Time{}
	}
}

// timestampOrServer подставляет серверное время, если значение не задано.
func timestampOrServer(t time.Time) interface{} {
	if t.IsZero() {
		return db.ServerTimestamp
	}
	return t
}
