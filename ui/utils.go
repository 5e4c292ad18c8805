package ui

import (
	"time"
)

// formatDateSeparator formats a message day for display as a separator
func formatDateSeparator(ts int64) string {
	t := time.Unix(ts, 0)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	msgDate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	if msgDate.Equal(today) {
		return "Today"
	} else if msgDate.Equal(yesterday) {
		return "Yesterday"
	} else if msgDate.Year() == now.Year() {
		return t.Format("January 2")
	}
	return t.Format("January 2, 2006")
}

// formatMessageTime formats a message timestamp for the sender line
func formatMessageTime(ts int64) string {
	return time.Unix(ts, 0).Format("PM 3:04")
}
