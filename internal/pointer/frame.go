package pointer

import "time"

// Mode names the entry point that produced a Frame.
type Mode string

const (
	ModeGaze Mode = "gaze"
	ModeHand Mode = "hand"
)

// Frame is the outcome of mapping one camera frame.
type Frame struct {
	Seq      uint64     `json:"seq"`
	Mode     Mode       `json:"mode"`
	Time     time.Time  `json:"time"`
	Detected bool       `json:"detected"`
	Engaged  bool       `json:"engaged"`
	Target   Vec2       `json:"target"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Moved    bool       `json:"moved"`
	Sticky   bool       `json:"sticky"`
	Click    ClickEvent `json:"click"`
	Held     bool       `json:"held"`
	Error    string     `json:"error,omitempty"`
}
