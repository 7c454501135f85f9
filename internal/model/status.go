package model

import "fmt"

// Status classifies one path's relationship between the two sides.
type Status int

const (
	StatusUnchanged Status = iota
	StatusAdded
	StatusRemoved
	StatusModified
	StatusConflicted
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusAdded:
		return "added"
	case StatusRemoved:
		return "removed"
	case StatusModified:
		return "modified"
	case StatusConflicted:
		return "conflicted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Icon is the one-character marker used by the tree panes.
func (s Status) Icon() string {
	switch s {
	case StatusAdded:
		return "+"
	case StatusRemoved:
		return "-"
	case StatusModified:
		return "~"
	case StatusConflicted:
		return "!"
	default:
		return " "
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"unchanged"`:
		*s = StatusUnchanged
	case `"added"`:
		*s = StatusAdded
	case `"removed"`:
		*s = StatusRemoved
	case `"modified"`:
		*s = StatusModified
	case `"conflicted"`:
		*s = StatusConflicted
	default:
		return fmt.Errorf("unknown status %s", string(b))
	}
	return nil
}
