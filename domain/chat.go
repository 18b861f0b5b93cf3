package domain

import (
	"fmt"
	"strconv"
)

type ChatID int64

// Chat has a participant set fixed at creation.
type Chat struct {
	ID           ChatID `json:"id"`
	Participants []User `json:"participants"`
}

// ChatView is a chat with its messages in canonical order (createdAt ascending).
type ChatView struct {
	Chat
	Messages []Message `json:"messages"`
}

func (id ChatID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// EventName is the push frame name for messages of this chat.
func (id ChatID) EventName() string {
	return fmt.Sprintf("message-%d", id)
}

func ParseChatID(s string) (ChatID, error) {
	id, err := parsePositive(s)
	return ChatID(id), err
}

func parsePositive(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// ChatPage is what a participant sees when opening a chat.
type ChatPage struct {
	Chat ChatView `json:"chat"`
	User User     `json:"user"`
}
