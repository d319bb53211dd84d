package sqlite

import (
	"fmt"
	"time"
)

// Время хранится как INTEGER unix-микросекунды; нулевое время — 0.
func toMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func fromMicro(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toColumn приводит значение поля к типу колонки SQLite.
func toColumn(v any) any {
	switch x := v.(type) {
	case time.Time:
		return toMicro(x)
	case *time.Time:
		if x == nil {
			return nil
		}
		return toMicro(*x)
	case bool:
		return boolToInt(x)
	default:
		return v
	}
}

type microTime struct{ t *time.Time }

func (m microTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m.t = time.Time{}
	case int64:
		*m.t = fromMicro(v)
	default:
		return fmt.Errorf("unexpected time value %T", src)
	}
	return nil
}

type nullMicroTime struct{ t **time.Time }

func (m nullMicroTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m.t = nil
	case int64:
		t := fromMicro(v)
		*m.t = &t
	default:
		return fmt.Errorf("unexpected time value %T", src)
	}
	return nil
}
