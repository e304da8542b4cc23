package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
	"github.com/vidstream/go-video-backend/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory UserRepo for tests.
type FakeUserRepo struct {
	users map[string]*users.User // keyed by hex id
	lock  sync.RWMutex

	FailUpdates bool // when set, UpdateFields reports a persistence failure
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := user.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "%v", err)
	}

	for _, existing := range ur.users {
		if existing.UserName == user.UserName || existing.Email == user.Email {
			return nil, apperrors.ErrUserExists
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	ur.users[user.ID.Hex()] = &cp
	return user, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) GetByIdentifier(_ context.Context, userName, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userName = users.NormalizeIdentifier(userName)
	email = users.NormalizeIdentifier(email)

	for _, u := range ur.users {
		if (userName != "" && u.UserName == userName) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (ur *FakeUserRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.FailUpdates {
		return nil, apperrors.ErrPersistence
	}

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}

	for k, v := range fields {
		s, _ := v.(string)
		// The unique email index fires on update too.
		if k == "email" {
			for otherID, other := range ur.users {
				if otherID != id && other.Email == s {
					return nil, apperrors.ErrUserExists
				}
			}
		}
		switch k {
		case "refreshToken":
			u.RefreshToken = s
		case "password":
			u.PasswordHash = s
		case "fullName":
			u.FullName = s
		case "email":
			u.Email = s
		case "avatar":
			u.Avatar = s
		case "coverImage":
			u.CoverImage = s
		}
	}
	u.UpdatedAt = time.Now().UTC()

	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.RefreshToken = ""
	u.UpdatedAt = time.Now().UTC()
	return nil
}
