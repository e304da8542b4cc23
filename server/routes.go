package server

const (
	RouteRegister       = "/register"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteRefreshToken   = "/refresh-token"
	RouteChangePassword = "/change-password"
	RouteCurrentUser    = "/current-user"
	RouteUpdateAccount  = "/update-account"
	RouteAvatar         = "/avatar"
	RouteCoverImage     = "/cover-image"
)

func (s *Server) initRoutes() {
	s.engine.GET("/healthz", s.HealthHandler())

	api := s.engine.Group("/api/v1/users")

	api.POST(RouteRegister, s.RegisterHandler())
	api.POST(RouteLogin, s.LoginHandler())
	api.POST(RouteRefreshToken, s.RefreshHandler())

	authed := api.Group("", s.RequireAuth())
	authed.POST(RouteLogout, s.LogoutHandler())
	authed.POST(RouteChangePassword, s.ChangePasswordHandler())
	authed.GET(RouteCurrentUser, s.CurrentUserHandler())
	authed.PATCH(RouteUpdateAccount, s.UpdateAccountHandler())
	authed.PATCH(RouteAvatar, s.UpdateAvatarHandler())
	authed.PATCH(RouteCoverImage, s.UpdateCoverImageHandler())
}
