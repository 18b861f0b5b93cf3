//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-live/domain"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, name string) (domain.User, error)
	GetUser(ctx context.Context, id domain.UserID) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser assigns the next user id and persists the user.
// Users are immutable once created.
func (u UserRepository) CreateUser(_ context.Context, name string) (domain.User, error) {
	var user DiskUser
	err := update(u.db, func(txn *badger.Txn) error {
		id, err := nextCounter(txn, userCounter)
		if err != nil {
			return err
		}
		user = DiskUser{ID: int64(id), Name: name}
		data, err := encodeUser(user)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(userKey(domain.UserID(id)), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return fromDiskUser(user), nil
}

// GetUser returns ErrNotFound when no user has this id.
func (u UserRepository) GetUser(_ context.Context, id domain.UserID) (domain.User, error) {
	var user DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return fromDiskUser(user), nil
}
