// Package httpapp wires the Echo HTTP server for the JSON API.
package httpapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/anita-ai/anita/internal/config"
	"github.com/anita-ai/anita/internal/db/store"
	"github.com/anita-ai/anita/internal/http/handlers"
	"github.com/anita-ai/anita/internal/lms/registry"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h   *handlers.Handlers
	e   *echo.Echo
	srv *http.Server
}

// NewEchoServer creates the API server with routes and middleware installed.
func NewEchoServer(cfg config.Config, st *store.Store, reg *registry.Registry) (*EchoServer, error) {
	h := &handlers.Handlers{Cfg: cfg, Store: st, Registry: reg}
	es := &EchoServer{h: h, e: echo.New()}
	es.e.HTTPErrorHandler = es.httpErrorHandler

	es.e.Use(middleware.RequestID())
	es.e.Use(middleware.Recover())
	if len(cfg.CORSAllowOrigins) > 0 {
		es.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSAllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		}))
	}

	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	es.e.POST("/instructors", es.h.HandleCreateInstructor)
	es.e.GET("/instructors/:id", es.h.HandleGetInstructor)
	es.e.GET("/instructors/clerk/:clerkUserID", es.h.HandleGetInstructorByClerkID)
	es.e.PATCH("/instructors/:id", es.h.HandleUpdateInstructor)
	es.e.DELETE("/instructors/:id", es.h.HandleDeleteInstructor)
	es.e.GET("/instructors/:id/lms-connections", es.h.HandleListInstructorConnections)
	es.e.GET("/instructors/:id/threads", es.h.HandleListInstructorThreads)

	es.e.GET("/lms-connections/types", es.h.HandleListLMSTypes)
	es.e.POST("/lms-connections/validate", es.h.HandleValidateConnection)
	es.e.POST("/lms-connections", es.h.HandleCreateConnection)
	es.e.GET("/lms-connections/:id", es.h.HandleGetConnection)
	es.e.PATCH("/lms-connections/:id", es.h.HandleUpdateConnection)
	es.e.POST("/lms-connections/:id/sync", es.h.HandleSyncConnection)
	es.e.DELETE("/lms-connections/:id", es.h.HandleDeleteConnection)

	es.e.POST("/threads", es.h.HandleCreateThread)
	es.e.GET("/threads/:id", es.h.HandleGetThread)
	es.e.PATCH("/threads/:id", es.h.HandleUpdateThread)
	es.e.DELETE("/threads/:id", es.h.HandleDeleteThread)
	es.e.POST("/threads/:id/messages", es.h.HandleCreateMessage)
	es.e.GET("/threads/:id/messages", es.h.HandleListMessages)
	es.e.GET("/messages/external/:externalID", es.h.HandleGetMessageByExternalID)
}

// httpErrorHandler converts unhandled errors into the JSON error envelope
// without leaking internals. Handlers that want specific codes respond
// themselves; anything reaching here is either routing noise or a bug.
func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if r, _ := echo.UnwrapResponse(c.Response()); r != nil && r.Committed {
		return
	}

	status := httpStatusFromError(err)
	requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
	if requestID == "" {
		requestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}

	code := handlers.InternalErrorCode
	message := "Internal server error"
	switch {
	case status == http.StatusNotFound:
		code = handlers.NotFoundCode
		message = "404 page not found"
	case status < http.StatusInternalServerError:
		code = handlers.RequestFailedCode
		message = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Error("http error",
			"request_id", requestID,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"ip", c.RealIP(),
			"error", err,
		)
	}

	_ = c.JSON(status, handlers.ErrorEnvelope(code, message, requestID))
}

func httpStatusFromError(err error) int {
	var sc echo.HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// Start starts the HTTP server.
func (es *EchoServer) Start(addr string) error {
	return es.e.Start(addr)
}

// StartServer starts the HTTP server with a custom http.Server.
func (es *EchoServer) StartServer(server *http.Server) error {
	server.Handler = es.e
	es.srv = server
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	if es.srv == nil {
		return nil
	}
	return es.srv.Shutdown(ctx)
}
