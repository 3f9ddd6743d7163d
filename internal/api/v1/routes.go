package v1

import (
	"workorder/internal/api/v1/handlers"
	"workorder/internal/config"
	"workorder/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Validate)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Validate)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Validate)
	eventsHandler := handlers.NewTaskEventsHandler(deps.Hub)
	useToken := middleware.UseToken(deps.Tokens)

	// Auth
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)

	// User; /info and /password must come before the public /:userId
	userRoutes := app.Group("/user")
	userRoutes.Get("/info", useToken, userHandler.Info)
	userRoutes.Put("/password", useToken, userHandler.ChangePassword)
	userRoutes.Get("/:userId", userHandler.Get)

	// Task; static paths first so they are not taken for a task id
	taskRoutes := app.Group("/task", useToken)
	taskRoutes.Post("/create", taskHandler.Create)
	taskRoutes.Get("/list", taskHandler.List)
	taskRoutes.Get("/stats", taskHandler.Stats)
	taskRoutes.Get("/range", taskHandler.ListByDateRange)
	taskRoutes.Get("/status/:status", taskHandler.ListByStatus)
	taskRoutes.Get("/priority/:priority", taskHandler.ListByPriority)
	taskRoutes.Get("/:taskId", taskHandler.Get)
	taskRoutes.Put("/:taskId", taskHandler.Update)
	taskRoutes.Delete("/:taskId", taskHandler.Delete)

	// WebSocket
	app.Get("/ws/tasks", eventsHandler.RequireUpgrade, useToken, websocket.New(eventsHandler.Stream))
}
