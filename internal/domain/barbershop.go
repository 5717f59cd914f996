package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

type Schedule struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = Sunday
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

type Barber struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Avatar    *string    `json:"avatar,omitempty"`
	Color     string     `json:"color,omitempty"`
	IsActive  bool       `json:"isActive,omitempty"`
	Schedules []Schedule `json:"schedules"`
}

// ScheduleFor returns the authoritative schedule for a weekday: the first
// entry for that day. ok is false when there is none or it is inactive.
func (b Barber) ScheduleFor(day time.Weekday) (Schedule, bool) {
	for _, s := range b.Schedules {
		if s.DayOfWeek == int(day) {
			return s, s.IsActive
		}
	}
	return Schedule{}, false
}

func (b Barber) WorksOn(day time.Weekday) bool {
	_, ok := b.ScheduleFor(day)
	return ok
}

type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Duration    int     `json:"duration"` // minutes
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

func (s Service) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("service %s: duration must be positive", s.ID)
	}
	if s.Price < 0 {
		return fmt.Errorf("service %s: price must not be negative", s.ID)
	}
	return nil
}

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBusy      SlotStatus = "busy"
)

type TimeSlot struct {
	StartTime string     `json:"startTime"` // HH:MM
	EndTime   string     `json:"endTime"`
	Status    SlotStatus `json:"status,omitempty"`
}

// Busy reports whether the slot is marked busy. Slots without a status are
// selectable.
func (s TimeSlot) Busy() bool {
	return s.Status == SlotBusy
}

// ClockMinutes parses an HH:MM string into minutes after midnight.
func ClockMinutes(hhmm string) (int, error) {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour*60 + minute, nil
}

// FormatClock is the inverse of ClockMinutes.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At combines a calendar day and an HH:MM clock time in loc.
func At(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	mins, err := ClockMinutes(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, mins/60, mins%60, 0, 0, loc), nil
}

// TokenInfo is what a booking token resolves to.
type TokenInfo struct {
	BarbershopID string  `json:"barbershopId"`
	BarberID     *string `json:"barberId"`
	Message      string  `json:"message,omitempty"`
}
