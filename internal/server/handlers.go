package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/report"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
)

var (
	errNoFiles     = errors.New("no files uploaded")
	errTooLarge    = errors.New("upload too large")
	errMissingIdea = errors.New("idea is required")
)

type analyzeStats struct {
	TotalRows     int `json:"total_rows"`
	Candidates    int `json:"candidates"`
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
	Returned      int `json:"returned"`
}

type analyzeResponse struct {
	SessionID string               `json:"session_id"`
	Strategy  scoring.Strategy     `json:"strategy"`
	Data      []scoring.ScoredLead `json:"data"`
	Stats     analyzeStats         `json:"stats"`
}

type subscribeRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Source    string `json:"source"`
	SessionID string `json:"session_id"`
}

type reportRequest struct {
	Data []scoring.ScoredLead `json:"data"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.cfg.Store != nil})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		fail(c, errTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			fail(c, errTooLarge)
			return
		}
		fail(c, fmt.Errorf("%w: %v", errNoFiles, err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		fail(c, errNoFiles)
		return
	}
	goal := strings.TrimSpace(c.PostForm("idea"))
	if goal == "" {
		fail(c, errMissingIdea)
		return
	}

	tables := make([]*leads.Table, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			fail(c, err)
			return
		}
		t, err := leads.NormalizeFile(fh.Filename, data, s.cfg.LeadOptions)
		if err != nil {
			fail(c, err)
			return
		}
		tables = append(tables, t)
	}
	merged, err := leads.Merge(tables...)
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sessionID := uuid.NewString()
	if s.cfg.Store != nil {
		n, err := s.cfg.Store.SaveLeads(ctx, sessionID, merged.Rows)
		if err != nil {
			zap.L().Error("save leads failed", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			zap.L().Info("leads saved", zap.String("session_id", sessionID), zap.Int("rows", n))
		}
	}

	res, err := s.cfg.Analyzer.Analyze(ctx, goal, merged)
	if err != nil {
		fail(c, err)
		return
	}
	data := res.Leads
	if data == nil {
		data = []scoring.ScoredLead{}
	}
	c.JSON(http.StatusOK, analyzeResponse{
		SessionID: sessionID,
		Strategy:  res.Strategy,
		Data:      data,
		Stats: analyzeStats{
			TotalRows:     res.TotalRows,
			Candidates:    res.Candidates,
			Batches:       res.Batches,
			FailedBatches: res.FailedBatches,
			Returned:      len(data),
		},
	})
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "a valid email is required"})
		return
	}
	if req.Source == "" {
		req.Source = "subscribe"
	}
	zap.L().Info("new subscriber", zap.String("email", req.Email), zap.String("source", req.Source))
	if s.cfg.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	ctx := c.Request.Context()
	if err := s.cfg.Store.SaveEmail(ctx, req.Email, req.Source); err != nil {
		zap.L().Error("save email failed", zap.Error(err))
	}
	if req.SessionID != "" {
		n, err := s.cfg.Store.LinkOwner(ctx, req.SessionID, req.Email)
		if err != nil {
			zap.L().Error("link owner failed", zap.String("session_id", req.SessionID), zap.Error(err))
		} else {
			zap.L().Debug("owner linked", zap.String("session_id", req.SessionID), zap.Int64("rows", n))
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid report body"})
		return
	}
	b, err := report.CSVBytes(req.Data)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(time.Now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var inErr *leads.InputError
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &inErr),
		errors.Is(err, errNoFiles),
		errors.Is(err, errMissingIdea),
		errors.Is(err, leads.ErrNoRows),
		errors.Is(err, scoring.ErrEmptyGoal):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}
