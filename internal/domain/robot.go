package domain

import (
	"encoding/json"
	"errors"
)

// Current position of the delivery robot. A single record per robot is
// overwritten in place; no history is kept.
type RobotPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (r RobotPosition) Coordinates() Coordinates {
	return Coordinates{Lat: r.Lat, Lon: r.Lon}
}

func NewRobotPosition(c Coordinates) RobotPosition {
	return RobotPosition{Lat: c.Lat, Lon: c.Lon}
}

// UnmarshalJSON accepts the legacy "lng" key when "lon" is absent.
func (r *RobotPosition) UnmarshalJSON(b []byte) error {
	var raw struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Lat == nil {
		return errors.New("robot position: missing lat")
	}

	r.Lat = *raw.Lat
	switch {
	case raw.Lon != nil:
		r.Lon = *raw.Lon
	case raw.Lng != nil:
		r.Lon = *raw.Lng
	default:
		r.Lon = 0
	}
	return nil
}
