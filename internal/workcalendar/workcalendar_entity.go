package workcalendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Settings is one effective-dated version of the organization calendar
// configuration. A settings change never alters the interpretation of days
// before its EffectiveFrom; lookups always go through SettingsAsOf.
type Settings struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WeeklyOffDays string     `gorm:"type:varchar(20);not null;default:'0,6'"` // csv of time.Weekday values
	MachineHost   string     `gorm:"type:varchar(100)"`
	MachinePort   int        `gorm:"type:int;default:4370"`
	RealTimeSync  bool       `gorm:"not null;default:true"`
	EffectiveFrom time.Time  `gorm:"type:date;not null;index"`
	EffectiveTo   *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Settings) TableName() string {
	return "calendar_settings"
}

// WeeklyOff parses the csv day list into a weekday set. Malformed entries
// are skipped rather than failing a read path.
func (s *Settings) WeeklyOff() map[time.Weekday]bool {
	off := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s.WeeklyOffDays, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 6 {
			continue
		}
		off[time.Weekday(d)] = true
	}
	return off
}

// Holiday applies to its calendar date only for queries on or after
// EffectiveFrom, so adding a holiday retroactively cannot rewrite reports
// for days that predate the entry.
type Holiday struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"type:varchar(100);not null"`
	HolidayDate   time.Time `gorm:"type:date;not null;index"`
	EffectiveFrom time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}
