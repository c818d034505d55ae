package bench

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by NewReporter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Reporter writes a finished Report somewhere.
type Reporter interface {
	Write(r *Report) error
}

// NewReporter returns the Reporter for format ("text" or "yaml") writing to w.
func NewReporter(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "text":
		return &TextReporter{w: w}, nil
	case "yaml":
		return &YAMLReporter{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// TextReporter emits one line per measurement:
//
//	BENCH:collections:<strategy>/<size>:<result>:<median_ns>
type TextReporter struct{ w io.Writer }

// Write implements Reporter.
func (t *TextReporter) Write(r *Report) error {
	for _, m := range r.Measurements {
		if _, err := fmt.Fprintf(t.w, "BENCH:collections:%s/%d:%d:%d\n",
			m.Strategy, m.Size, m.Result, m.Stats.Median.Nanoseconds()); err != nil {
			return fmt.Errorf("writing measurement: %w", err)
		}
	}
	return nil
}

// YAMLReporter marshals the whole report as a YAML document.
type YAMLReporter struct{ w io.Writer }

// Write implements Reporter.
func (y *YAMLReporter) Write(r *Report) error {
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}
