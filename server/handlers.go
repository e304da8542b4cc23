package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidstream/go-video-backend/auth"
)

func (s *Server) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": s.config.GetAppName()})
	}
}

// RegisterHandler creates a new account from a multipart form carrying the
// profile fields plus an avatar file (required) and cover image (optional).
func (s *Server) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input := auth.RegisterInput{
			UserName: c.PostForm("userName"),
			Email:    c.PostForm("email"),
			FullName: c.PostForm("fullName"),
			Password: c.PostForm("password"),
		}

		avatar, closeAvatar, err := formImage(c, "avatar")
		if err != nil {
			respondError(c, err)
			return
		}
		if closeAvatar != nil {
			defer closeAvatar()
		}

		cover, closeCover, err := formImage(c, "coverImage")
		if err != nil {
			respondError(c, err)
			return
		}
		if closeCover != nil {
			defer closeCover()
		}

		user, err := s.sessions.Register(c.Request.Context(), input, avatar, cover)
		if err != nil {
			respondError(c, err)
			return
		}

		respond(c, http.StatusCreated, user, "User created successfully")
	}
}

type loginRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apiResponse{Status: http.StatusBadRequest, Message: err.Error()})
			return
		}

		result, err := s.sessions.Login(c.Request.Context(), auth.LoginInput{
			UserName: req.UserName,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		s.setAuthCookies(c, result.Tokens)
		respond(c, http.StatusOK, gin.H{
			"user":         result.User,
			"accessToken":  result.Tokens.AccessToken,
			"refreshToken": result.Tokens.RefreshToken,
		}, "User logged in successfully")
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshHandler rotates the session: the presented refresh token (cookie or
// body) is exchanged for a new pair and the old one becomes invalid.
func (s *Server) RefreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, _ := c.Cookie(refreshTokenCookie)
		if presented == "" {
			var req refreshRequest
			if err := c.ShouldBindJSON(&req); err == nil {
				presented = req.RefreshToken
			}
		}

		result, err := s.sessions.Refresh(c.Request.Context(), presented)
		if err != nil {
			respondError(c, err)
			return
		}

		s.setAuthCookies(c, result.Tokens)
		respond(c, http.StatusOK, gin.H{
			"accessToken":  result.Tokens.AccessToken,
			"refreshToken": result.Tokens.RefreshToken,
		}, "Access token refreshed")
	}
}

func (s *Server) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.sessions.Logout(c.Request.Context(), callerID(c)); err != nil {
			respondError(c, err)
			return
		}

		s.clearAuthCookies(c)
		respond(c, http.StatusOK, nil, "User logged out successfully")
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) ChangePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apiResponse{Status: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if err := s.sessions.ChangePassword(c.Request.Context(), callerID(c), req.OldPassword, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}

		respond(c, http.StatusOK, nil, "Password changed successfully")
	}
}

func (s *Server) CurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.sessions.CurrentUser(c.Request.Context(), callerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user, "Current user fetched successfully")
	}
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (s *Server) UpdateAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apiResponse{Status: http.StatusBadRequest, Message: err.Error()})
			return
		}

		user, err := s.sessions.UpdateAccount(c.Request.Context(), callerID(c), req.FullName, req.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user, "Account updated successfully")
	}
}

func (s *Server) UpdateAvatarHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, closeFile, err := formImage(c, "avatar")
		if err != nil {
			respondError(c, err)
			return
		}
		if closeFile != nil {
			defer closeFile()
		}

		user, err := s.sessions.UpdateAvatar(c.Request.Context(), callerID(c), file)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user, "Avatar updated successfully")
	}
}

func (s *Server) UpdateCoverImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, closeFile, err := formImage(c, "coverImage")
		if err != nil {
			respondError(c, err)
			return
		}
		if closeFile != nil {
			defer closeFile()
		}

		user, err := s.sessions.UpdateCoverImage(c.Request.Context(), callerID(c), file)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user, "Cover image updated successfully")
	}
}

// formImage pulls a file out of the multipart form. A missing file is not an
// error here; the service decides whether the field was required.
func formImage(c *gin.Context, field string) (*auth.ImageFile, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &auth.ImageFile{Name: fh.Filename, Data: f}, func() { _ = f.Close() }, nil
}

func (s *Server) setAuthCookies(c *gin.Context, pair auth.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken, s.cookieMaxAge, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, s.cookieMaxAge, "/", "", true, true)
}

func (s *Server) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", true, true)
}
