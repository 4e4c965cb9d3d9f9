package structs

import "time"

// Level tells a notification's outcome.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// BoardTopic is the topic of notifications about the local board.
const BoardTopic = "board"

// Notification is the one-line message an operation reports to the user.
// Topic is BoardTopic or the id of the user whose tasks changed.
type Notification struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
