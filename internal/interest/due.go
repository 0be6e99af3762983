package interest

import "time"

// IsDue reports whether a loan still needs today's interest posting. A loan
// that never accrued is due from its lend date on; otherwise the last posting
// must fall on an earlier calendar day than today.
func IsDue(lentDate time.Time, lastInterestDate *time.Time, today time.Time) bool {
	if lastInterestDate == nil {
		return !TruncateToDay(lentDate.In(today.Location())).After(TruncateToDay(today))
	}
	last := TruncateToDay(lastInterestDate.In(today.Location()))
	return last.Before(TruncateToDay(today))
}

// NextDueDate is the calendar day after the last posting, or after the lend
// date when nothing has been posted yet.
func NextDueDate(lentDate time.Time, lastInterestDate *time.Time) time.Time {
	from := lentDate
	if lastInterestDate != nil {
		from = *lastInterestDate
	}
	return TruncateToDay(from).AddDate(0, 0, 1)
}
