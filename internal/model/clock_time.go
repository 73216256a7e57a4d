package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ClockTime is a time of day with second precision, stored as seconds
// since midnight.
type ClockTime int

const secondsPerDay = 24 * 60 * 60

func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(hour*3600 + minute*60 + second)
}

// ParseClockTime accepts "15:04", "15:04:05" and "15:04:05.000000".
func ParseClockTime(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"15:04:05.999999999", "15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

func (c ClockTime) Hour() int   { return int(c) / 3600 }
func (c ClockTime) Minute() int { return int(c) % 3600 / 60 }
func (c ClockTime) Second() int { return int(c) % 60 }

func (c ClockTime) Valid() bool {
	return c >= 0 && c < secondsPerDay
}

func (c ClockTime) Before(other ClockTime) bool {
	return c < other
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *ClockTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		parsed, err := ParseClockTime(string(v))
		if err != nil {
			return err
		}
		*c = parsed
	case time.Time:
		*c = NewClockTime(v.Hour(), v.Minute(), v.Second())
	case nil:
		*c = 0
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", value)
	}
	return nil
}

func (ClockTime) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return "time"
}
