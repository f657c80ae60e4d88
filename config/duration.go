package config

import (
	"fmt"
	"strconv"
	"time"
)

// Duration decodes from a Go duration string ("5s", "2m30s") or a bare
// integer of seconds in YAML, where time.Duration would otherwise read
// a bare integer as nanoseconds.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or a bare integer of
// seconds, the latter matching the scanner's `cycle`/`duration`
// fields which the corpus's example configs express as seconds.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var text string
	if err := unmarshal(&text); err == nil {
		// An integer scalar also decodes into a string.
		if seconds, convErr := strconv.Atoi(text); convErr == nil {
			*d = Duration(time.Duration(seconds) * time.Second)
			return nil
		}
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", text, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds int
	if err := unmarshal(&seconds); err != nil {
		return fmt.Errorf("duration must be a string (\"5s\") or an integer number of seconds")
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std returns the time.Duration value.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
