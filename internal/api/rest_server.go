package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/loadout"
	"github.com/ghosttier/arsenal-server/internal/middleware"
)

// RestServer serves the catalog, account and loadout API over HTTP.
type RestServer struct {
	router   *gin.Engine
	users    auth.UserRepository
	catalog  catalog.Repository
	loadouts *loadout.Manager
	port     string
	metrics  *ServerMetrics
	httpSrv  *http.Server
}

// Config contains the REST server dependencies.
type Config struct {
	Port     string
	UserRepo auth.UserRepository
	Catalog  catalog.Repository
	Loadouts *loadout.Manager
}

// NewRestServer creates a REST API server with the observability
// middleware chain already attached.
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("rest_api"))

	promMw := middleware.NewPrometheusMiddleware("rest_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:   router,
		users:    config.UserRepo,
		catalog:  config.Catalog,
		loadouts: config.Loadouts,
		port:     config.Port,
		metrics:  NewServerMetrics(),
	}

	server.setupRoutes()

	return server
}

func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")

	// Account endpoints. Register and login issue the session cookie.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", rs.handleRegister)
		authGroup.POST("/login", rs.handleLogin)
		authGroup.POST("/logout", rs.handleLogout)
		authGroup.GET("/me", rs.jwtMiddleware(), rs.handleMe)
	}

	// Public catalog, active entries only.
	api.GET("/weapons", rs.handleListWeapons)
	api.GET("/weapons/:id", rs.handleGetWeapon)
	api.GET("/characters", rs.handleListCharacters)
	api.GET("/characters/:id", rs.handleGetCharacter)

	// Loadout endpoints require a session.
	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		protected.GET("/loadout", rs.handleGetLoadout)
		protected.POST("/loadout", rs.handleLoadoutAction)
		protected.GET("/loadouts", rs.handleListNamedLoadouts)
		protected.POST("/loadouts", rs.handleCreateNamedLoadout)
		protected.DELETE("/loadouts", rs.handleDeleteNamedLoadout)

		admin := protected.Group("/admin")
		admin.Use(rs.adminMiddleware())
		{
			admin.POST("/weapons", rs.handleAdminCreateWeapon)
			admin.PUT("/weapons/:id", rs.handleAdminUpdateWeapon)
			admin.DELETE("/weapons/:id", rs.handleAdminDeleteWeapon)
			admin.POST("/characters", rs.handleAdminCreateCharacter)
			admin.PUT("/characters/:id", rs.handleAdminUpdateCharacter)
			admin.DELETE("/characters/:id", rs.handleAdminDeleteCharacter)
			admin.GET("/users", rs.handleAdminListUsers)
			admin.GET("/stats", rs.handleAdminStats)
		}
	}

	rs.router.GET("/health", rs.handleHealth)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Router exposes the underlying engine for tests.
func (rs *RestServer) Router() http.Handler {
	return rs.router
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (rs *RestServer) Start() error {
	rs.httpSrv = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := rs.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests and shuts the server down.
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpSrv == nil {
		return nil
	}
	return rs.httpSrv.Shutdown(ctx)
}
