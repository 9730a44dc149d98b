// Package fakeapi is an in-memory document repository backend speaking the
// same REST contract as the real service. It backs end-to-end tests and local
// development.
package fakeapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configure a fake backend.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	Log *zap.Logger
}

// Server bundles the store with its HTTP routes.
type Server struct {
	Store  *Store
	Tokens *TokenIssuer
	engine *gin.Engine
}

// New builds a server with an empty, department-seeded store.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := NewStore(opts.Now)
	tokens := NewTokenIssuer(opts.JWTSecret, opts.TokenTTL, opts.Now)
	s := &Server{Store: store, Tokens: tokens}
	s.engine = setup(NewHandler(store, tokens, log), tokens, store, log)
	return s
}

// Handler returns the gin engine.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setup(h *Handler, tokens *TokenIssuer, store *Store, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/departments", h.Departments)

	protected := api.Group("")
	protected.Use(Auth(tokens, store))
	protected.GET("/auth/me", h.Me)
	protected.GET("/tags", h.Tags)
	protected.GET("/users/me/documents", h.MyDocuments)

	docs := protected.Group("/documents")
	docs.GET("", h.ListDocuments)
	docs.GET("/search", h.SearchDocuments)
	docs.POST("/upload", h.Upload)
	docs.GET("/:id", h.GetDocument)
	docs.PUT("/:id", h.UpdateDocument)
	docs.GET("/:id/versions", h.Versions)
	docs.GET("/:id/download", h.Download)
	docs.POST("/:id/version", h.UploadVersion)

	return r
}
