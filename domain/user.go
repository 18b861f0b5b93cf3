package domain

import (
	"strconv"
)

type UserID int64

type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// Author is the summary of a user embedded in messages.
type Author struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

func (u User) Author() Author {
	return Author{ID: u.ID, Name: u.Name}
}

// UserView is a user together with the chats they take part in.
type UserView struct {
	User
	Chats []Chat `json:"chats"`
}

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseUserID parses a path parameter. Anything but a positive integer is rejected.
func ParseUserID(s string) (UserID, error) {
	id, err := parsePositive(s)
	return UserID(id), err
}
