package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// ClockTime is a time of day without a date, serialized as "HH:MM".
	ClockTime struct {
		Hour   int
		Minute int
	}

	// Coordinates is a geographic point attached to an entry when a
	// location lookup succeeded.
	Coordinates struct {
		Latitude  float64
		Longitude float64
	}

	// Overtime is a single recorded instance of overtime work.
	Overtime struct {
		ID          uuid.UUID
		UserID      uuid.UUID
		Date        time.Time
		Hours       float64
		Description string
		City        string
		Coordinates *Coordinates
	}

	// User is the single profile that owns all entries on the device.
	User struct {
		ID               uuid.UUID `json:"id"`
		Email            string    `json:"email"`
		Name             string    `json:"name"`
		Department       string    `json:"department"`
		SupervisorEmail  string    `json:"supervisorEmail"`
		NotificationTime ClockTime `json:"notificationTime"`
		IsActive         bool      `json:"isActive"`
	}
)

var (
	ErrNegativeHours      = errors.New("hours cannot be negative")
	ErrMissingOwner       = errors.New("entry has no owner")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyEmail         = errors.New("empty email")
	ErrEmptySupervisor    = errors.New("empty supervisor email")
	ErrInvalidClockTime   = errors.New("invalid clock time")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

func (c ClockTime) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return ErrInvalidClockTime
	}
	if c.Minute < 0 || c.Minute > 59 {
		return ErrInvalidClockTime
	}
	return nil
}

// String formats the time of day as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClockTime parses a "HH:MM" string into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	ct := ClockTime{Hour: hour, Minute: minute}
	if err := ct.Validate(); err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", err, s)
	}
	return ct, nil
}

func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return ErrInvalidCoordinates
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

func (o Overtime) Validate() error {
	if o.UserID == uuid.Nil {
		return ErrMissingOwner
	}
	if o.Hours < 0 {
		return ErrNegativeHours
	}
	if o.Coordinates != nil {
		if err := o.Coordinates.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if strings.TrimSpace(u.SupervisorEmail) == "" {
		return ErrEmptySupervisor
	}
	return u.NotificationTime.Validate()
}

// overtimeWire is the persisted shape of an entry. Coordinates are
// flattened to two numeric fields that are present only together.
type overtimeWire struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Date        time.Time `json:"date"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

func (o Overtime) MarshalJSON() ([]byte, error) {
	w := overtimeWire{
		ID:          o.ID,
		UserID:      o.UserID,
		Date:        o.Date,
		Hours:       o.Hours,
		Description: o.Description,
		City:        o.City,
	}
	if o.Coordinates != nil {
		lat, lon := o.Coordinates.Latitude, o.Coordinates.Longitude
		w.Latitude = &lat
		w.Longitude = &lon
	}
	return json.Marshal(w)
}

func (o *Overtime) UnmarshalJSON(data []byte) error {
	var w overtimeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	o.ID = w.ID
	o.UserID = w.UserID
	o.Date = w.Date
	o.Hours = w.Hours
	o.Description = w.Description
	o.City = w.City
	o.Coordinates = nil
	if w.Latitude != nil && w.Longitude != nil {
		o.Coordinates = &Coordinates{Latitude: *w.Latitude, Longitude: *w.Longitude}
	}
	return nil
}
