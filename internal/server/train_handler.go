package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"railscan/internal/model"
	"railscan/internal/pipeline"
	"railscan/internal/store"
	"railscan/pkg/log"
)

const trainKey = "train"

func SetTrainToContext(reports ReportStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainId := c.Param("train_id")
		report, err := reports.GetTrain(trainId)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "train not found"})
			return
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		c.Set(trainKey, report)
		c.Next()
	}
}

// TrainSummary is a list entry of GET /api/v1/trains.
type TrainSummary struct {
	TrainId    string             `json:"train_id"`
	RunId      string             `json:"run_id"`
	Source     string             `json:"source"`
	FinishedAt time.Time          `json:"finished_at"`
	Error      string             `json:"error,omitempty"`
	Totals     model.ReportTotals `json:"totals"`
}

type ListTrainsResponse struct {
	Total  int            `json:"total"`
	Trains []TrainSummary `json:"trains"`
}

// handleListTrains lists every stored train report.
func (s *Server) handleListTrains(c *gin.Context) {
	reports, err := s.store.ListTrains()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	resp := ListTrainsResponse{Trains: make([]TrainSummary, 0, len(reports))}
	for _, r := range reports {
		resp.Trains = append(resp.Trains, TrainSummary{
			TrainId:    r.TrainId,
			RunId:      r.RunId,
			Source:     r.Source,
			FinishedAt: r.FinishedAt,
			Error:      r.Error,
			Totals:     r.Totals,
		})
	}
	resp.Total = len(resp.Trains)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTrain(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(trainKey).(*model.TrainReport))
}

func (s *Server) handleGetCoach(c *gin.Context) {
	report := c.MustGet(trainKey).(*model.TrainReport)
	coach, err := strconv.Atoi(c.Param("coach"))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, errors.New("invalid coach"))
		return
	}
	for i := range report.Coaches {
		if report.Coaches[i].Coach == coach {
			c.JSON(http.StatusOK, report.Coaches[i])
			return
		}
	}
	s.writeError(c, http.StatusNotFound, errors.New("coach not found"))
}

type AnalyzeRequest struct {
	Path    string `json:"path" binding:"required"`
	TrainId string `json:"train_id" binding:"omitempty,trainid"`
}

type AnalyzeResponse struct {
	TrainId string `json:"train_id"`
}

// handleAnalyzeTrain queues a video for analysis. The video path is
// resolved on the server host.
func (s *Server) handleAnalyzeTrain(c *gin.Context) {
	if s.submitter == nil {
		s.writeError(c, http.StatusServiceUnavailable, errors.New("analysis is not enabled"))
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	job := pipeline.NewJob(req.Path, req.TrainId)
	if err := job.Validate(); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.submitter.Submit(job); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, pipeline.ErrQueueFull):
			code = http.StatusTooManyRequests
		case errors.Is(err, pipeline.ErrQueueClosed):
			code = http.StatusServiceUnavailable
		}
		s.writeError(c, code, err)
		return
	}
	log.GetLogger(c.Request.Context()).WithField("subject", c.GetString(subjectKey)).
		Infof("queued %s as train %s", job.Path, job.TrainId)
	c.JSON(http.StatusAccepted, AnalyzeResponse{TrainId: job.TrainId})
}
