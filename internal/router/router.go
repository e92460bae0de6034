package router

import (
	"net/http"

	"github.com/bananalabs-oss/lobby/internal/friends"
	"github.com/bananalabs-oss/lobby/internal/notifications"
	"github.com/bananalabs-oss/lobby/internal/parties"
	"github.com/bananalabs-oss/lobby/internal/presence"
	"github.com/bananalabs-oss/lobby/internal/users"
	potassium "github.com/bananalabs-oss/potassium/middleware"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Parties       *parties.Service
	Presence      *presence.Projector
	Notifications *notifications.Service
	Friends       *friends.Service
	Users         *users.Service
}

func Setup(svc Services, jwtSecret, serviceToken string) *gin.Engine {
	r := gin.Default()

	ph := parties.NewHandler(svc.Parties)
	pr := presence.NewHandler(svc.Presence)
	nh := notifications.NewHandler(svc.Notifications)
	fh := friends.NewHandler(svc.Friends)
	uh := users.NewHandler(svc.Users)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "lobby"})
	})

	jwt := potassium.JWTAuth(potassium.JWTConfig{
		Secret: []byte(jwtSecret),
	})

	// Player-facing endpoints (JWT auth via Potassium)
	api := r.Group("/parties")
	api.Use(jwt)
	{
		api.POST("", ph.CreateParty)
		api.GET("/mine", pr.GetMyParty)
		api.GET("/mine/stream", pr.StreamMyParty)
		api.POST("/join", ph.JoinParty)
		api.POST("/leave", ph.LeaveParty)
		api.POST("/kick", ph.KickMember)
		api.POST("/promote", ph.PromoteMember)
		api.POST("/invite", ph.InviteFriend)
		api.POST("/request-join", ph.RequestJoin)
		api.GET("/messages", ph.GetMessages)
		api.POST("/messages", ph.PostMessage)
	}

	notes := r.Group("/notifications")
	notes.Use(jwt)
	{
		notes.GET("", nh.ListNotifications)
		notes.POST("/:id/read", nh.MarkRead)
		notes.POST("/:id/accept", nh.Accept)
		notes.POST("/:id/decline", nh.Decline)
	}

	fr := r.Group("/friends")
	fr.Use(jwt)
	{
		fr.GET("", fh.ListFriends)
		fr.GET("/requests", fh.ListRequests)
		fr.POST("/requests", fh.SendRequest)
		fr.POST("/requests/:id/accept", fh.AcceptRequest)
		fr.POST("/requests/:id/decline", fh.DeclineRequest)
		fr.DELETE("/:friendId", fh.RemoveFriend)
	}

	me := r.Group("/users/me")
	me.Use(jwt)
	{
		me.GET("", uh.GetMe)
		me.PATCH("/settings", uh.UpdateSettings)
		me.POST("/heartbeat", uh.Heartbeat)
	}

	// Admin endpoints (JWT plus a stored is_admin flag)
	admin := r.Group("/admin/parties")
	admin.Use(jwt, RequireAdmin(svc.Users))
	{
		admin.GET("", ph.ListParties)
		admin.POST("/:partyId/join", ph.AdminJoin)
		admin.POST("/:partyId/takeover", ph.AdminTakeover)
	}

	// Internal endpoints (service token auth via Potassium)
	internal := r.Group("/internal")
	internal.Use(potassium.ServiceAuth(serviceToken))
	{
		internal.GET("/parties/:partyId", ph.GetPartyByID)
		internal.GET("/parties/player/:userId", ph.GetPlayerParty)
		internal.PUT("/users/:userId", uh.SyncUser)
	}

	return r
}
