package port

import "time"

// Sink is an output surface for live and periodic snapshot lines.
type Sink interface {
	WriteLive(line string) error
	WriteSnapshot(ts time.Time, line string) error
	NewLine() error
}
