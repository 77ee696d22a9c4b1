package domain

import (
	"fmt"
	"time"
)

// WarningCode classifies non-fatal data-quality findings surfaced to callers.
type WarningCode string

const (
	WarnAmbiguousDistrict WarningCode = "ambiguous_district"
	WarnDayDropped        WarningCode = "day_dropped"
	WarnRainfallMismatch  WarningCode = "rainfall_mismatch"
	WarnHorizonShortfall  WarningCode = "horizon_shortfall"
)

// Warning is a non-fatal finding attached to a resolution. Resolution always
// proceeds past warnings; only the error taxonomy stops a request.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return w.Message }

// AmbiguousDistrictWarning records that the query matched more than one
// district; resolution proceeds with the first in reading order.
func AmbiguousDistrictWarning(chosen, alternative string) Warning {
	return Warning{
		Code:    WarnAmbiguousDistrict,
		Message: fmt.Sprintf("query matched multiple districts; using %q, ignoring %q", chosen, alternative),
	}
}

// DayDroppedWarning records that one forecast day was discarded and why.
func DayDroppedWarning(date time.Time, reason string) Warning {
	return Warning{
		Code:    WarnDayDropped,
		Message: fmt.Sprintf("dropped forecast day %s: %s", date.Format("2006-01-02"), reason),
	}
}

// RainfallMismatchWarning records that the duplicated rainfall rows disagreed
// beyond tolerance; the first occurrence was used.
func RainfallMismatchWarning(date time.Time, first, second float64) Warning {
	return Warning{
		Code:    WarnRainfallMismatch,
		Message: fmt.Sprintf("rainfall rows disagree for %s (%.2fmm vs %.2fmm); using first", date.Format("2006-01-02"), first, second),
	}
}

// HorizonShortfallWarning records that the upstream table carried fewer days
// than requested.
func HorizonShortfallWarning(requested, got int) Warning {
	return Warning{
		Code:    WarnHorizonShortfall,
		Message: fmt.Sprintf("requested %d forecast days but upstream provided %d", requested, got),
	}
}
