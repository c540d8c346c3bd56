package routes

import (
	"net/http"

	"newsletter/internal/adapter/http/handler"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	HealthHandler       *handler.HealthHandler
	SubscriptionHandler *handler.SubscriptionHandler
}

// Route binds one method and path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Table lists every application route. Registration order carries no meaning:
// gin dispatches on the exact (method, path) pair.
func Table(handlers HandlersConfig) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/health_check", Handler: handlers.HealthHandler.Check},
		{Method: http.MethodPost, Path: "/subscriptions", Handler: handlers.SubscriptionHandler.Subscribe},
	}
}

// SetupRouter builds an engine with the given middleware chain followed by
// the route table. A known path requested with another method gets 405.
func SetupRouter(table []Route, middlewares ...gin.HandlerFunc) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middlewares...)

	for _, route := range table {
		router.Handle(route.Method, route.Path, route.Handler)
	}

	return router
}
