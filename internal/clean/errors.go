package clean

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned when parsing succeeds but yields no data rows.
var ErrEmptyTable = errors.New("empty table: no data rows after parsing")

// ParseError is the fatal loader failure: no parse strategy produced a
// usable table. It aborts the pipeline.
type ParseError struct {
	Strategies int   // number of strategies attempted
	Err        error // last underlying parse error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse CSV after %d strategies: %v", e.Strategies, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError reports an invalid cleaning parameter.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// IsFatal reports whether err aborts the pipeline. Soft failures (individual
// unparseable dates, degenerate statistics) never surface as errors; they
// accumulate in the Report instead.
func IsFatal(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) || errors.Is(err, ErrEmptyTable)
}
