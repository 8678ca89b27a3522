package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/soundroomhq/soundroom/internal/application/config"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/handlers"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	trackHandler *handlers.TrackHandler,
	playlistHandler *handlers.PlaylistHandler,
	roomHandler *handlers.RoomHandler,
	sessionHandler *handlers.SessionHandler,
	joinNotifyHandler *handlers.JoinNotifyHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))

	authed.GET("/me", authHandler.GetMe)
	authed.POST("/auth/logout", authHandler.Logout)

	authed.POST("/tracks", trackHandler.Upload)
	authed.GET("/tracks", trackHandler.List)
	authed.GET("/tracks/:id", trackHandler.Get)
	authed.PUT("/tracks/:id", trackHandler.Update)
	authed.DELETE("/tracks/:id", trackHandler.Delete)

	authed.POST("/playlists", playlistHandler.Create)
	authed.GET("/playlists", playlistHandler.List)
	authed.GET("/playlists/:id", playlistHandler.Get)
	authed.PUT("/playlists/:id", playlistHandler.Update)
	authed.DELETE("/playlists/:id", playlistHandler.Delete)
	authed.POST("/playlists/:id/tracks", playlistHandler.AddTrack)
	authed.PUT("/playlists/:id/tracks", playlistHandler.MoveTrack)
	authed.DELETE("/playlists/:id/tracks/:position", playlistHandler.RemoveTrack)

	authed.POST("/rooms", roomHandler.Create)
	authed.GET("/rooms", roomHandler.List)
	authed.GET("/rooms/:id", roomHandler.Get)
	authed.PUT("/rooms/:id", roomHandler.Update)
	authed.DELETE("/rooms/:id", roomHandler.Delete)
	authed.GET("/rooms/:id/members", roomHandler.Roster)
	authed.PUT("/rooms/:id/members/:memberID", roomHandler.ChangeMemberRole)
	authed.DELETE("/rooms/:id/members/:memberID", roomHandler.RemoveMember)
	authed.POST("/rooms/:id/leave", roomHandler.Leave)
	authed.GET("/rooms/:id/playlist", roomHandler.Playlist)
	authed.POST("/rooms/:id/join", roomHandler.RequestToJoin)
	authed.GET("/rooms/:id/requests", roomHandler.ListJoinRequests)
	authed.POST("/requests/:id/resolve", roomHandler.ResolveJoinRequest)
	authed.GET("/rooms/:id/messages", roomHandler.Messages)
	authed.GET("/rooms/:id/messages/search", roomHandler.SearchMessages)

	ws := e.Group("/ws", middleware.JWTAuthMiddleware(cfg.JWTSecret))

	ws.GET("/rooms/:id", sessionHandler.Handle)
	ws.GET("/rooms/:id/join", joinNotifyHandler.Handle)

	return e
}
