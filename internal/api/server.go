package api

import (
	"net/http"

	"opinionmap/app"

	"github.com/gin-gonic/gin"
)

// Server exposes the analysis pipeline over HTTP
type Server struct {
	router       *gin.Engine
	runs         *app.RunCoordinator
	participants *app.ParticipantService
	metrics      http.Handler
}

// NewServer wires the routes. metrics may be nil, in which case /metrics is not served.
func NewServer(runs *app.RunCoordinator, participants *app.ParticipantService, metrics http.Handler) *Server {
	s := &Server{
		router:       gin.New(),
		runs:         runs,
		participants: participants,
		metrics:      metrics,
	}
	s.router.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	v1 := s.router.Group("/v1")
	{
		v1.POST("/analyses", s.createAnalysis)
		v1.GET("/analyses/latest", s.latestAnalysis)
		v1.GET("/analyses/latest/export.xlsx", s.exportLatest)
		v1.GET("/statements/:tid/comparison", s.compareStatement)
		v1.GET("/participants/:pid", s.participantProfile)
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the server fails
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	_, ready := s.runs.Latest()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "has_result": ready})
}
