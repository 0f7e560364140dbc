package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/services"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleMe(c *gin.Context)

	HandleListProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleGetProject(c *gin.Context)
	HandleUpdateProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)

	HandleListTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)

	HandleStoreMiddleware(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
}

type handlerImpl struct {
	logger        zerolog.Logger
	store         storage.Store
	resolver      services.SessionResolver
	auth          services.AuthService
	projects      services.ProjectService
	tasks         services.TaskService
	secureCookies bool
}

type Option func(*handlerImpl)

// WithSecureCookies marks the token cookie as HTTPS only.
func WithSecureCookies(secure bool) Option {
	return func(h *handlerImpl) {
		h.secureCookies = secure
	}
}

func New(
	logger zerolog.Logger,
	store storage.Store,
	resolver services.SessionResolver,
	authService services.AuthService,
	projectService services.ProjectService,
	taskService services.TaskService,
	opts ...Option,
) Handler {
	h := &handlerImpl{
		logger:   logger,
		store:    store,
		resolver: resolver,
		auth:     authService,
		projects: projectService,
		tasks:    taskService,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the v1 API on the router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/health", h.HandleHealth)

	api := router.Group("/api/v1", h.HandleStoreMiddleware)

	authRouter := api.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/logout", h.HandleLogout)
	authRouter.GET("/me", h.HandleMe)

	projectsRouter := api.Group("/projects", h.HandleAuthMiddleware)
	projectsRouter.GET("", h.HandleListProjects)
	projectsRouter.POST("", h.HandleCreateProject)
	projectsRouter.GET("/:id", h.HandleGetProject)
	projectsRouter.PUT("/:id", h.HandleUpdateProject)
	projectsRouter.DELETE("/:id", h.HandleDeleteProject)

	tasksRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleListTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
