package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"railscan/internal/model"
	"railscan/internal/pipeline"
	"railscan/pkg/log"
)

const httpXRequestId = "X-Request-Id"

type Options struct {
	Addr    string `yaml:"addr" validate:"required,hostname_port"`
	SSLCert string `yaml:"sslCert"`
	SSLKey  string `yaml:"sslKey"`
	// JwtSecret signs the tokens accepted by POST /api/v1/trains. Analysis
	// requests are refused while it is empty.
	JwtSecret string `yaml:"jwtSecret"`
}

// ReportStore is the read side of the result store.
type ReportStore interface {
	ListTrains() ([]*model.TrainReport, error)
	GetTrain(trainId string) (*model.TrainReport, error)
	GetCoach(trainId string, coach int) (*model.CoachReport, error)
}

// Submitter accepts analysis jobs for background processing.
type Submitter interface {
	Submit(job pipeline.Job) error
}

type Server struct {
	opts       Options
	store      ReportStore
	submitter  Submitter
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer creates the API server. submitter may be nil, in which case
// analysis requests are refused.
func NewServer(ctx context.Context, opts Options, store ReportStore, submitter Submitter) *Server {
	return &Server{
		opts:      opts,
		store:     store,
		submitter: submitter,
		logger:    log.GetLogger(ctx).WithField("component", "server"),
	}
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(httpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(httpXRequestId, requestId)
		c.Request = c.Request.WithContext(log.WithRequest(c.Request.Context(), requestId))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c.Request.Context()).WithField("component", "server").Info("ip: ", c.ClientIP(),
			" method: ", c.Request.Method, " path: ", c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.opts.Addr,
		Handler: router,
	}

	var err error
	if s.opts.SSLCert != "" && s.opts.SSLKey != "" {
		s.logger.Infof("start https server on %s", s.opts.Addr)
		err = s.httpServer.ListenAndServeTLS(s.opts.SSLCert, s.opts.SSLKey)
	} else {
		s.logger.Infof("start http server on %s", s.opts.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("trainid", func(fl validator.FieldLevel) bool {
			return pipeline.ValidTrainId(fl.Field().String())
		})
	}
}
