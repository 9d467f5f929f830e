package domain

import (
	"encoding/json"
	"fmt"
)

// Status is a package's progress at a point in time.
type Status int

const (
	AtHub Status = iota
	EnRoute
	Delivered
)

func (s Status) String() string {
	switch s {
	case AtHub:
		return "At Hub"
	case EnRoute:
		return "En Route"
	case Delivered:
		return "Delivered"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
