package attendance

import "errors"

var ErrAttendanceAlreadyRecorded = errors.New("attendance already recorded for this employee and date")
