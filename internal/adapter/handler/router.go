package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
)

// Router wires handlers to routes.
type Router struct {
	meeting    *MeetingHandler
	extraction *ExtractionHandler
	insights   *InsightsHandler
	rag        *RAGHandler
}

func NewRouter(
	meeting *MeetingHandler,
	extraction *ExtractionHandler,
	insights *InsightsHandler,
	rag *RAGHandler,
) *Router {
	return &Router{
		meeting:    meeting,
		extraction: extraction,
		insights:   insights,
		rag:        rag,
	}
}

// Setup registers all routes on the Echo instance.
func (r *Router) Setup(e *echo.Echo) {
	e.GET("/health", healthCheck)

	v1 := e.Group("/v1", middleware.RequireAccount())

	meetings := v1.Group("/meetings")
	meetings.POST("", r.meeting.Create)
	meetings.GET("", r.meeting.List)
	meetings.GET("/:id", r.meeting.Get)
	meetings.POST("/:id/transcripts", r.meeting.UploadTranscript)

	extract := v1.Group("/extract")
	extract.POST("", r.extraction.Extract)
	extract.GET("/runs/:id", r.extraction.GetRun)

	actions := v1.Group("/action-items")
	actions.POST("/:id/done", r.insights.CompleteActionItem)
	actions.POST("/:id/reopen", r.insights.ReopenActionItem)
	actions.POST("/:id/acknowledge", r.insights.AcknowledgeActionItem)

	v1.GET("/alerts/:meeting_id", r.insights.Alerts)

	metrics := v1.Group("/metrics")
	metrics.GET("/meetings/:id", r.insights.MeetingMetrics)
	metrics.GET("/weekly", r.insights.WeeklyMetrics)

	ragGroup := v1.Group("/rag")
	ragGroup.POST("/query", r.rag.Query)
	ragGroup.POST("/query/stream", r.rag.QueryStream)
	ragGroup.POST("/search", r.rag.Search)
	ragGroup.POST("/index", r.rag.Index)
	ragGroup.POST("/index-all", r.rag.IndexAll)
	ragGroup.GET("/stats", r.rag.Stats)
}

func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
