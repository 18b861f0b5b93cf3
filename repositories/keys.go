package repositories

import (
	"chat-live/domain"
	"fmt"
	"time"
)

// Keyspace layout. Numeric parts are zero padded so lexicographical order
// matches numeric order during prefix scans.
//
//	user:{id}                          user record
//	chat:{id}                          chat record (participant ids)
//	member:{user}:{chat}               membership index
//	msg:{chat}:{created_at_nano}:{id}  message record, canonical chat order
//	feed:{seq}                         change feed, every chat
//	feedc:{chat}:{seq}                 change feed, one chat
//	cursor:session:{chat}:{session}    viewer position in one chat
//	cursor:worker:{name}               durable position of a feed worker
//	counter:{name}                     id counters, counter:feed is the feed head
const (
	userPrefix   = "user:"
	chatPrefix   = "chat:"
	memberPrefix = "member:"
	msgPrefix    = "msg:"
	feedPrefix   = "feed:"
	cursorPrefix = "cursor:"

	userCounter    = "counter:user"
	chatCounter    = "counter:chat"
	messageCounter = "counter:message"
	feedCounter    = "counter:feed"
)

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("%s%019d", userPrefix, id))
}

func chatKey(id domain.ChatID) []byte {
	return []byte(fmt.Sprintf("%s%019d", chatPrefix, id))
}

func memberKey(userID domain.UserID, chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%019d", memberPrefix, userID, chatID))
}

func memberPrefixFor(userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("%s%019d:", memberPrefix, userID))
}

func messageKey(chatID domain.ChatID, at time.Time, id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%019d:%019d", msgPrefix, chatID, at.UnixNano(), id))
}

func messagePrefixFor(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("%s%019d:", msgPrefix, chatID))
}

func feedKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", feedPrefix, seq))
}

func chatFeedKey(chatID domain.ChatID, seq uint64) []byte {
	return []byte(fmt.Sprintf("feedc:%019d:%020d", chatID, seq))
}

func chatFeedPrefixFor(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("feedc:%019d:", chatID))
}

func cursorKey(name string) []byte {
	return []byte(cursorPrefix + name)
}
