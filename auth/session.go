// Package auth orchestrates the session lifecycle: credential checks, token
// issuance and rotation, and the server-side refresh token mirror.
package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
	"github.com/vidstream/go-video-backend/media"
	"github.com/vidstream/go-video-backend/token"
	"github.com/vidstream/go-video-backend/users"
)

// Repos holds the collaborator dependencies for the SessionService.
type Repos struct {
	Users users.UserRepo // Persistence for user documents
	Media media.Store    // Hosted image store
}

// SessionService implements the login/refresh/logout state machine. A user is
// logged in while a refresh token is stored on their document; issuing a new
// pair overwrites it, logout clears it. At most one refresh token is valid
// per user at any time, so concurrent logins are last-write-wins: the last
// pair issued is the sole valid session.
type SessionService struct {
	repos    Repos
	issuer   *token.Issuer
	verifier *token.Verifier // Verifies refresh tokens
}

// NewSessionService initializes a new SessionService with required dependencies.
func NewSessionService(repos Repos, issuer *token.Issuer, refreshVerifier *token.Verifier) (*SessionService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewSessionService] Users repo is required")
	}
	if repos.Media == nil {
		return nil, errors.New("[NewSessionService] Media store is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewSessionService] issuer is required")
	}
	if refreshVerifier == nil {
		return nil, errors.New("[NewSessionService] refreshVerifier is required")
	}

	return &SessionService{
		repos:    repos,
		issuer:   issuer,
		verifier: refreshVerifier,
	}, nil
}

// Register validates the input, uploads the avatar (required) and cover image
// (optional), hashes the password, and persists the new user.
func (ss *SessionService) Register(ctx context.Context, input RegisterInput, avatar, cover *ImageFile) (*users.PublicUser, error) {
	for _, field := range []string{input.UserName, input.Email, input.FullName, input.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, apperrors.ErrMissingField
		}
	}
	if avatar == nil {
		return nil, apperrors.Wrapf(apperrors.ErrMissingField, "avatar is required")
	}

	user := &users.User{
		UserName: input.UserName,
		Email:    input.Email,
		FullName: input.FullName,
	}
	user.Normalize()

	// Reject duplicates before paying for uploads. The unique indexes still
	// back this up against concurrent registrations.
	if _, err := ss.repos.Users.GetByIdentifier(ctx, user.UserName, user.Email); err == nil {
		return nil, apperrors.ErrUserExists
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	avatarURL, err := ss.repos.Media.Upload(ctx, avatar.Name, avatar.Data)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMediaUpload, "avatar: %v", err)
	}
	user.Avatar = avatarURL

	if cover != nil {
		coverURL, err := ss.repos.Media.Upload(ctx, cover.Name, cover.Data)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrMediaUpload, "cover image: %v", err)
		}
		user.CoverImage = coverURL
	}

	hash, err := users.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstream, "hash password: %v", err)
	}
	user.PasswordHash = hash

	created, err := ss.repos.Users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created.Public(), nil
}

// Login checks the credentials and, on success, issues a fresh token pair and
// stores the refresh token on the user document.
func (ss *SessionService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	userName := strings.TrimSpace(input.UserName)
	email := strings.TrimSpace(input.Email)
	if userName == "" && email == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMissingField, "userName or email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMissingField, "password is required")
	}

	user, err := ss.repos.Users.GetByIdentifier(ctx, userName, email)
	if err != nil {
		return nil, err
	}

	if !users.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, updated, err := ss.issueAndStore(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: updated.Public(), Tokens: pair}, nil
}

// Refresh exchanges a presented refresh token for a new pair. The presented
// token must verify and match, byte for byte, the one currently stored on the
// user document; the overwrite of that field is what invalidates the old
// token (rotation / replay detection).
func (ss *SessionService) Refresh(ctx context.Context, presented string) (*LoginResult, error) {
	if strings.TrimSpace(presented) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims, err := ss.verifier.Verify(presented)
	if err != nil {
		return nil, err
	}

	user, err := ss.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		// A valid signature with no matching user still yields Unauthorized,
		// not NotFound.
		return nil, apperrors.ErrInvalidToken
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return nil, apperrors.ErrTokenMismatch
	}

	pair, updated, err := ss.issueAndStore(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: updated.Public(), Tokens: pair}, nil
}

// Logout clears the stored refresh token for the authenticated caller.
// Clearing an already empty field is a no-op.
func (ss *SessionService) Logout(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.ErrMissingCaller
	}

	if err := ss.repos.Users.ClearRefreshToken(ctx, userID); err != nil {
		return errors.Wrap(err, "[SessionService.Logout] ClearRefreshToken")
	}
	return nil
}

// ChangePassword requires the caller to re-prove the old password before the
// new one is hashed and persisted.
func (ss *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.ErrMissingCaller
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.Wrapf(apperrors.ErrMissingField, "new password is required")
	}

	user, err := ss.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !users.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstream, "hash password: %v", err)
	}

	if _, err := ss.repos.Users.UpdateFields(ctx, userID, map[string]any{"password": hash}); err != nil {
		return errors.Wrap(err, "[SessionService.ChangePassword] UpdateFields")
	}
	return nil
}

// CurrentUser returns the public projection of the authenticated caller.
func (ss *SessionService) CurrentUser(ctx context.Context, userID string) (*users.PublicUser, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.ErrMissingCaller
	}

	user, err := ss.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateAccount updates the mutable profile fields. Empty inputs leave the
// corresponding field unchanged.
func (ss *SessionService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*users.PublicUser, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.ErrMissingCaller
	}

	fields := map[string]any{}
	if strings.TrimSpace(fullName) != "" {
		fields["fullName"] = strings.TrimSpace(fullName)
	}
	if strings.TrimSpace(email) != "" {
		fields["email"] = users.NormalizeIdentifier(email)
	}
	if len(fields) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrMissingField, "nothing to update")
	}

	updated, err := ss.repos.Users.UpdateFields(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

// UpdateAvatar uploads a replacement avatar and stores its URL.
func (ss *SessionService) UpdateAvatar(ctx context.Context, userID string, file *ImageFile) (*users.PublicUser, error) {
	return ss.updateImage(ctx, userID, "avatar", file)
}

// UpdateCoverImage uploads a replacement cover image and stores its URL.
func (ss *SessionService) UpdateCoverImage(ctx context.Context, userID string, file *ImageFile) (*users.PublicUser, error) {
	return ss.updateImage(ctx, userID, "coverImage", file)
}

func (ss *SessionService) updateImage(ctx context.Context, userID, field string, file *ImageFile) (*users.PublicUser, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.ErrMissingCaller
	}
	if file == nil {
		return nil, apperrors.Wrapf(apperrors.ErrMissingField, "%s file is required", field)
	}

	url, err := ss.repos.Media.Upload(ctx, file.Name, file.Data)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMediaUpload, "%s: %v", field, err)
	}

	updated, err := ss.repos.Users.UpdateFields(ctx, userID, map[string]any{field: url})
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

// issueAndStore mints a new token pair and overwrites the stored refresh
// token in one logical step. Concurrent calls for the same user race on the
// stored field; the last write wins and silently invalidates the loser's
// refresh token (single-session semantics).
func (ss *SessionService) issueAndStore(ctx context.Context, user *users.User) (TokenPair, *users.User, error) {
	accessToken, err := ss.issuer.AccessToken(user)
	if err != nil {
		return TokenPair{}, nil, apperrors.Wrapf(apperrors.ErrUpstream, "issue access token: %v", err)
	}

	refreshToken, err := ss.issuer.RefreshToken(user.ID.Hex())
	if err != nil {
		return TokenPair{}, nil, apperrors.Wrapf(apperrors.ErrUpstream, "issue refresh token: %v", err)
	}

	updated, err := ss.repos.Users.UpdateFields(ctx, user.ID.Hex(), map[string]any{"refreshToken": refreshToken})
	if err != nil {
		return TokenPair{}, nil, apperrors.Wrapf(apperrors.ErrUpstream, "store refresh token: %v", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, updated, nil
}
