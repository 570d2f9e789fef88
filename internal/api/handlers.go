package api

import (
	"fmt"
	"net/http"
	"time"

	"opinionmap/adapters/excel"
	"opinionmap/app"
	"opinionmap/domain/core"
	"opinionmap/internal"
	"opinionmap/internal/errors"

	"github.com/gin-gonic/gin"
)

var logger = internal.DefaultLogger.WithPrefix("API")

var errNoAnalysis = errors.NotFound("completed analysis")

func (s *Server) createAnalysis(c *gin.Context) {
	var req app.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "invalid request body")))
		return
	}

	report, err := s.runs.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) latestAnalysis(c *gin.Context) {
	report, ok := s.runs.Latest()
	if !ok {
		respondError(c, errNoAnalysis)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) exportLatest(c *gin.Context) {
	report, ok := s.runs.Latest()
	if !ok {
		respondError(c, errNoAnalysis)
		return
	}

	sheets := app.GroupSheets(report)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="repness-%s.xlsx"`, report.RunID))
	if err := excel.NewExporter(report.Statements()).Write(c.Writer, report.RunID.String(), sheets); err != nil {
		logger.Error("export of run %s failed: %v", report.RunID, err)
		c.Status(http.StatusInternalServerError)
	}
}

func (s *Server) compareStatement(c *gin.Context) {
	tid, err := core.ParseStatementID(c.Param("tid"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	report, ok := s.runs.Latest()
	if !ok {
		respondError(c, errNoAnalysis)
		return
	}

	cmp, err := app.CompareStatement(report, tid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) participantProfile(c *gin.Context) {
	pid, err := core.ParseParticipantID(c.Param("pid"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	profile, err := s.participants.Profile(c.Request.Context(), pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// respondError maps error codes to HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.CodeValidationError, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeInsufficientGroups:
		status = http.StatusUnprocessableEntity
	case errors.CodeRunSuperseded:
		status = http.StatusConflict
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeDatabaseError, errors.CodeStatementSourceFail:
		status = http.StatusServiceUnavailable
	default:
		if core.IsNotFoundError(err) {
			status, code = http.StatusNotFound, errors.CodeNotFound
		}
	}

	if status >= 500 {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
