package validation

import (
	"regexp"
	"strconv"
	"time"
)

var (
	maskedDate     = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	maskedDateTime = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4}) (\d{2}):(\d{2})$`)
)

const (
	minMaskedYear = 1900
	maxMaskedYear = 2100
)

// ValidMaskedDate reports whether value is a real calendar date typed as
// DD/MM/YYYY.
func ValidMaskedDate(value string) bool {
	if len(value) != 10 {
		return false
	}
	m := maskedDate.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	return validDayMonthYear(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

// ValidMaskedDateTime reports whether value is a real calendar date and time
// typed as DD/MM/YYYY HH:MM.
func ValidMaskedDateTime(value string) bool {
	if len(value) != 16 {
		return false
	}
	m := maskedDateTime.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	hour, minute := atoi(m[4]), atoi(m[5])
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return false
	}
	return validDayMonthYear(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func validDayMonthYear(day, month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}
	if year < minMaskedYear || year > maxMaskedYear {
		return false
	}
	return day >= 1 && day <= daysIn(time.Month(month), year)
}

// daysIn returns the length of month in year, leap years included.
func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
