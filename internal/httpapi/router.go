package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/config"
	"github.com/YFrancis10/MeMantra-sub001/internal/httpapi/handlers"
	"github.com/YFrancis10/MeMantra-sub001/internal/httpapi/middleware"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
	"github.com/YFrancis10/MeMantra-sub001/internal/pkg/logger"
	"github.com/YFrancis10/MeMantra-sub001/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, pub notify.Publisher, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, rds, pub, log)

	r.GET("/ping", h.Ping)

	// registration + sign-in
	r.POST("/captcha", h.SendCaptcha)
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)
	r.POST("/auth/google", h.GoogleSignIn)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/reset-password", h.ResetPassword)

	// public reads
	r.GET("/users/:id", h.GetUserByID)
	r.GET("/categories", h.ListCategories)
	r.GET("/mantras", h.ListMantras)
	r.GET("/mantras/:id", h.GetMantra)

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))

	// account
	authed.GET("/me", h.Me)
	authed.PATCH("/me", h.UpdateMe)
	authed.PATCH("/me/password", h.UpdatePassword)
	authed.PATCH("/me/email", h.UpdateEmail)
	authed.PUT("/me/push-token", h.UpdatePushToken)
	authed.DELETE("/me", h.DeleteMe)

	// catalog writes (admin gated in handlers)
	authed.POST("/categories", h.CreateCategory)
	authed.PATCH("/categories/:id", h.UpdateCategory)
	authed.DELETE("/categories/:id", h.DeleteCategory)
	authed.POST("/mantras", h.CreateMantra)
	authed.PATCH("/mantras/:id", h.UpdateMantra)
	authed.DELETE("/mantras/:id", h.DeleteMantra)
	authed.POST("/mantras/:id/like", h.ToggleLike)
	authed.POST("/mantras/:id/save", h.SaveMantra)

	// collections
	authed.GET("/collections", h.ListCollections)
	authed.POST("/collections", h.CreateCollection)
	authed.GET("/collections/:id", h.GetCollection)
	authed.DELETE("/collections/:id", h.DeleteCollection)
	authed.POST("/collections/:id/mantras", h.AddToCollection)
	authed.DELETE("/collections/:id/mantras/:mantra_id", h.RemoveFromCollection)

	// chat
	authed.GET("/conversations", h.ListConversations)
	authed.POST("/conversations", h.CreateConversation)
	authed.GET("/conversations/:id", h.GetConversation)
	authed.GET("/conversations/:id/messages", h.ListConversationMessages)
	authed.PATCH("/conversations/:id/read", h.MarkConversationRead)
	authed.DELETE("/conversations/:id", h.DeleteConversation)
	authed.POST("/messages", h.SendMessage)
	authed.POST("/messages/:id/reactions", h.ToggleReaction)
	authed.GET("/messages/:id/reactions", h.GetReactions)

	// push notifications
	authed.POST("/notifications/test", h.TestNotification)
	authed.POST("/notifications/broadcast", h.Broadcast)

	return r
}
