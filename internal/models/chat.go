package models

// TimestampLayout renders chat times as "HH:MM AM/PM".
const TimestampLayout = "03:04 PM"

// ChatExchange is the reply to a single chat question. It is not persisted.
type ChatExchange struct {
	UserInput string `json:"-"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}
