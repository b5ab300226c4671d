package ui

import (
	"github.com/gin-gonic/gin"

	"tolninja/app"
	"tolninja/internal"
)

// Server exposes the stackup service over HTTP.
type Server struct {
	router  *gin.Engine
	service *app.StackupService
	log     *internal.Logger
}

// NewServer creates the web server and registers its routes.
func NewServer(service *app.StackupService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
		log:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.POST("/stackups/analyze", s.handleAnalyze)
	api.POST("/stackups", s.handleSave)
	api.GET("/stackups", s.handleList)
	api.GET("/stackups/:id", s.handleGet)
	api.PUT("/stackups/:id", s.handleUpdate)
	api.DELETE("/stackups/:id", s.handleDelete)
	api.POST("/stackups/:id/analyze", s.handleAnalyzeStored)
	api.GET("/stackups/:id/report.html", s.handleHTMLReport)
	api.POST("/stackups/:id/report.xlsx", s.handleExcelReport)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run starts the server on the given port.
func (s *Server) Run(port string) error {
	s.log.Info("starting server on :%s", port)
	return s.router.Run(":" + port)
}
