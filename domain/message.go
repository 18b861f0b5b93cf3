// Package domain contains core concepts of the chat system.
// This file defines Message records and the author summary they carry.
// Messages are immutable once written by the store.
package domain

import (
	"strconv"
	"time"
)

type MessageID int64

// Message is an immutable chat entry. Author is resolved by the store so
// every outward representation embeds the author summary.
type Message struct {
	ID        MessageID `json:"id"`
	ChatID    ChatID    `json:"chatId"`
	UserID    UserID    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"user"`
}

// NewMessage is the write intent handed to the store.
// CreatedAt is stamped by the store, never by the caller.
type NewMessage struct {
	ChatID ChatID
	UserID UserID
	Text   string
}

func (id MessageID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
