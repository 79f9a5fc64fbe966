// SPDX-License-Identifier: Apache-2.0

// Package httpapi serves verification over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aletheiaproj/aletheia/internal/media"
	"github.com/aletheiaproj/aletheia/internal/provenance"
	"github.com/aletheiaproj/aletheia/internal/verify"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// DefaultMaxBodyBytes bounds uploaded media.
	DefaultMaxBodyBytes = 32 << 20
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type statsResponse struct {
	ImagesChecked    int64   `json:"images_checked"`
	CredentialsFound int64   `json:"credentials_found"`
	SuccessRate      float64 `json:"success_rate"`
}

// Server is the HTTP front end of a verify.Service.
type Server struct {
	svc          *verify.Service
	logger       *zap.Logger
	maxBodyBytes int64
	r            *gin.Engine
}

// NewServer builds the router. A nil logger discards logs.
func NewServer(svc *verify.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	s := &Server{svc: svc, logger: logger, maxBodyBytes: DefaultMaxBodyBytes, r: r}
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/verify", s.handleVerify)
		v1.POST("/normalize", s.handleNormalize)
		v1.GET("/stats", s.handleStats)
	}

	s.r.NoRoute(func(c *gin.Context) {
		s.writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// handleVerify runs the engine over the raw request body, or over the image
// at the url query parameter when the body is empty. The result is returned
// with 200 whatever its status.
func (s *Server) handleVerify(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	if len(body) == 0 {
		rawURL := c.Query("url")
		if rawURL == "" {
			s.writeErrorCode(c, http.StatusBadRequest, "EMPTY_BODY", "request body must contain the media bytes or url must be set")
			return
		}
		if !media.IsURL(rawURL) {
			s.writeErrorCode(c, http.StatusBadRequest, "INVALID_URL", "url must be http or https")
			return
		}
		writeResult(c, s.svc.VerifyURL(c.Request.Context(), rawURL, c.Query("media_type")))
		return
	}

	result := s.svc.Verify(c.Request.Context(), provenance.MediaSource{
		Content:   body,
		MediaType: c.ContentType(),
		ID:        c.Query("name"),
	})
	writeResult(c, result)
}

// handleNormalize reshapes manifest store text supplied by the caller.
func (s *Server) handleNormalize(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	if len(body) == 0 {
		s.writeErrorCode(c, http.StatusBadRequest, "EMPTY_BODY", "request body must contain manifest JSON")
		return
	}
	writeResult(c, provenance.Normalize(string(body)))
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("load stats", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		s.writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "stats unavailable")
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		ImagesChecked:    st.ImagesChecked,
		CredentialsFound: st.CredentialsFound,
		SuccessRate:      st.SuccessRate(),
	})
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorCode(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds the size limit")
			return nil, false
		}
		s.writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "failed to read request body")
		return nil, false
	}
	return body, true
}

func writeResult(c *gin.Context, result provenance.VerificationResult) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", result.JSON())
}

func (s *Server) writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	})
}
