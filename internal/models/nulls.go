package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hrdocs/personnel-backend/pkg/dates"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// NewNullString returns a valid NullString for non-empty s.
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// NullDate is a nullable DATE column, marshaled as "YYYY-MM-DD".
type NullDate struct {
	sql.NullTime
}

// NewNullDate returns a valid NullDate.
func NewNullDate(t time.Time) NullDate {
	return NullDate{sql.NullTime{Time: t, Valid: true}}
}

// MarshalJSON implements json.Marshaler
func (nd NullDate) MarshalJSON() ([]byte, error) {
	if nd.Valid {
		return json.Marshal(dates.FormatISO(nd.Time))
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nd *NullDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		nd.Valid = false
		return nil
	}
	t, err := dates.ParseISO(*s)
	if err != nil {
		return err
	}
	nd.Time, nd.Valid = t, true
	return nil
}

// Ptr returns nil for NULL.
func (nd NullDate) Ptr() *time.Time {
	if !nd.Valid {
		return nil
	}
	t := nd.Time
	return &t
}

// NullInt64 wraps sql.NullInt64 to provide proper JSON marshaling
type NullInt64 struct {
	sql.NullInt64
}

// NewNullInt64 returns a valid NullInt64.
func NewNullInt64(v int64) NullInt64 {
	return NullInt64{sql.NullInt64{Int64: v, Valid: true}}
}

// MarshalJSON implements json.Marshaler
func (ni NullInt64) MarshalJSON() ([]byte, error) {
	if ni.Valid {
		return json.Marshal(ni.Int64)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ni *NullInt64) UnmarshalJSON(data []byte) error {
	var v *int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v != nil {
		ni.Valid = true
		ni.Int64 = *v
	} else {
		ni.Valid = false
	}
	return nil
}
