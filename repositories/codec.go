package repositories

import (
	"chat-live/domain"
	"chat-live/domain/event"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Values are stored as protobuf Struct messages.

type DiskUser struct {
	ID   int64
	Name string
}

type DiskChat struct {
	ID           int64
	Participants []int64
}

type DiskMessage struct {
	ID         int64
	ChatID     int64
	UserID     int64
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

type DiskChange struct {
	Seq       uint64
	Type      event.ChangeType
	Namespace event.Namespace
	Message   DiskMessage
}

func marshal(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return proto.Marshal(s)
}

func unmarshal(b []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode struct: %w", err)
	}
	return &s, nil
}

func number(s *structpb.Struct, field string) int64 {
	return int64(s.GetFields()[field].GetNumberValue())
}

func text(s *structpb.Struct, field string) string {
	return s.GetFields()[field].GetStringValue()
}

func encodeUser(u DiskUser) ([]byte, error) {
	return marshal(map[string]any{"id": u.ID, "name": u.Name})
}

func decodeUser(b []byte) (DiskUser, error) {
	s, err := unmarshal(b)
	if err != nil {
		return DiskUser{}, err
	}
	return DiskUser{ID: number(s, "id"), Name: text(s, "name")}, nil
}

func encodeChat(c DiskChat) ([]byte, error) {
	participants := lo.Map(c.Participants, func(id int64, _ int) any { return id })
	return marshal(map[string]any{"id": c.ID, "participants": participants})
}

func decodeChat(b []byte) (DiskChat, error) {
	s, err := unmarshal(b)
	if err != nil {
		return DiskChat{}, err
	}
	values := s.GetFields()["participants"].GetListValue().GetValues()
	return DiskChat{
		ID: number(s, "id"),
		Participants: lo.Map(values, func(v *structpb.Value, _ int) int64 {
			return int64(v.GetNumberValue())
		}),
	}, nil
}

func messageFields(m DiskMessage) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"chatId":     m.ChatID,
		"userId":     m.UserID,
		"authorName": m.AuthorName,
		"text":       m.Text,
		"createdAt":  m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func messageFromStruct(s *structpb.Struct) (DiskMessage, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, text(s, "createdAt"))
	if err != nil {
		return DiskMessage{}, fmt.Errorf("decode createdAt: %w", err)
	}
	return DiskMessage{
		ID:         number(s, "id"),
		ChatID:     number(s, "chatId"),
		UserID:     number(s, "userId"),
		AuthorName: text(s, "authorName"),
		Text:       text(s, "text"),
		CreatedAt:  createdAt.UTC(),
	}, nil
}

func encodeMessage(m DiskMessage) ([]byte, error) {
	return marshal(messageFields(m))
}

func decodeMessage(b []byte) (DiskMessage, error) {
	s, err := unmarshal(b)
	if err != nil {
		return DiskMessage{}, err
	}
	return messageFromStruct(s)
}

func encodeChange(c DiskChange) ([]byte, error) {
	return marshal(map[string]any{
		"seq":       int64(c.Seq),
		"type":      int64(c.Type),
		"namespace": string(c.Namespace),
		"message":   messageFields(c.Message),
	})
}

func decodeChange(b []byte) (DiskChange, error) {
	s, err := unmarshal(b)
	if err != nil {
		return DiskChange{}, err
	}
	message, err := messageFromStruct(s.GetFields()["message"].GetStructValue())
	if err != nil {
		return DiskChange{}, err
	}
	return DiskChange{
		Seq:       uint64(number(s, "seq")),
		Type:      event.ChangeType(number(s, "type")),
		Namespace: event.Namespace(text(s, "namespace")),
		Message:   message,
	}, nil
}

// Counters are raw big endian uint64 values.
func encodeCounter(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeCounter(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("counter has %d bytes, want 8", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func fromDiskUser(u DiskUser) domain.User {
	return domain.User{ID: domain.UserID(u.ID), Name: u.Name}
}

func fromDiskMessage(m DiskMessage) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(m.ID),
		ChatID:    domain.ChatID(m.ChatID),
		UserID:    domain.UserID(m.UserID),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Author:    domain.Author{ID: domain.UserID(m.UserID), Name: m.AuthorName},
	}
}

func toDiskMessage(m domain.Message) DiskMessage {
	return DiskMessage{
		ID:         int64(m.ID),
		ChatID:     int64(m.ChatID),
		UserID:     int64(m.UserID),
		AuthorName: m.Author.Name,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

func fromDiskChange(c DiskChange) event.Change {
	message := fromDiskMessage(c.Message)
	return event.Change{
		Seq:       c.Seq,
		Type:      c.Type,
		Namespace: c.Namespace,
		ChatID:    message.ChatID,
		Message:   message,
	}
}
