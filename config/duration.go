package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written in a YAML document
// as a human string ("30s", "5m") instead of a raw integer nanosecond
// count.
type Duration time.Duration

// UnmarshalYAML accepts either a Go duration string or a raw integer
// count of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.ShortTag() != "!!int" {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var i int64
	if err := value.Decode(&i); err != nil {
		return err
	}
	*d = Duration(time.Duration(i))
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
