package model

import "time"

// Kind distinguishes files from directories in a scan.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	if string(b) == `"dir"` {
		*k = KindDir
	} else {
		*k = KindFile
	}
	return nil
}

// Entry is one side's view of one path. It is owned by the scan that
// produced it and never mutated after the scan returns.
type Entry struct {
	RelPath     string    `json:"rel_path"`
	Kind        Kind      `json:"kind"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Fingerprint uint64    `json:"fingerprint,omitempty"`
	// Err records a per-entry read failure (permission denied, broken
	// symlink). The scan itself keeps going.
	Err string `json:"error,omitempty"`
}

func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}
