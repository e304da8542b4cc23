package users

import "context"

// UserRepo is the persistence collaborator for user documents. Implementations
// must guarantee read-your-writes within a single logical operation; writes to
// the same document are serialized at the storage layer.
type UserRepo interface {
	// Create validates and inserts a new user. Duplicate username/email
	// yields ErrUserExists.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByID looks a user up by hex document id.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByIdentifier looks a user up by username or email; either may be
	// empty but not both. Identifiers are matched in normalized form.
	GetByIdentifier(ctx context.Context, userName, email string) (*User, error)

	// UpdateFields applies a partial update ($set) and returns the updated
	// document. Unlike Create it skips required-field checks, so single-field
	// mutations such as the refresh-token overwrite on login stay cheap.
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*User, error)

	// ClearRefreshToken unsets the stored refresh token. Clearing an already
	// empty field is a no-op.
	ClearRefreshToken(ctx context.Context, id string) error
}
