package router

import (
	"github.com/gin-gonic/gin"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/handler"
	"github.com/humanoid-ai/humanoid-server/internal/api/http/middleware"
	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Dependencies holds everything the router wires together.
type Dependencies struct {
	Auth    *handler.Auth
	Admin   *handler.Admin
	Chat    *handler.Chat
	Product *handler.Product
	Tokens  middleware.TokenValidator
	Users   model.UserStore
	Logger  *logger.Logger
}

// New assembles the HTTP routing tree.
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Logging(deps.Logger))

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/refresh", deps.Auth.Refresh)
	auth.POST("/logout", deps.Auth.Logout)

	protected := api.Group("/")
	protected.Use(middleware.Authenticate(deps.Tokens))

	protected.GET("/auth/me", deps.Auth.Me)
	protected.GET("/auth/sessions", deps.Auth.Sessions)

	protected.POST("/conversations", deps.Chat.StartConversation)
	protected.GET("/conversations", deps.Chat.ListConversations)
	protected.GET("/conversations/:id/messages", deps.Chat.History)
	protected.POST("/conversations/:id/messages", deps.Chat.SendMessage)

	protected.POST("/products", deps.Product.Create)
	protected.GET("/products", deps.Product.List)
	protected.GET("/products/:id", deps.Product.Get)
	protected.GET("/products/:id/image", deps.Product.Image)
	protected.DELETE("/products/:id", deps.Product.Delete)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin(deps.Users))

	admin.POST("/credentials", deps.Admin.AddCredential)
	admin.GET("/credentials", deps.Admin.ListCredentials)
	admin.PATCH("/credentials/:id", deps.Admin.SetCredentialActive)
	admin.GET("/tokens/stats", deps.Admin.TokenStats)
	admin.POST("/users/:id/revoke", deps.Admin.RevokeUserSessions)
	admin.GET("/users/:id/sessions", deps.Admin.UserSessions)
	admin.GET("/users/:id/assignments", deps.Admin.UserAssignments)

	return engine
}
