package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

const defaultRunsLimit = 50
const maxRunsLimit = 1000

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress string
	ServiceKeyApi string
	ReportDir     string
	History       HistoryLoader
	Companies     HistoryLoader
	RunLog        RunLogReader
}

// server exposes the generated artifacts: the HTML report, the two history documents
// and the update run log
type server struct {
	router     *gin.Engine
	httpServer *http.Server
	history    HistoryLoader
	companies  HistoryLoader
	runLog     RunLogReader
	serviceKey string
	listenAddr string
	reportDir  string
	wg         sync.WaitGroup
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.History) {
		return nil, errors.New("nil history loader")
	}
	if check.IfNil(args.Companies) {
		return nil, errors.New("nil companies history loader")
	}
	if check.IfNil(args.RunLog) {
		return nil, errors.New("nil run log reader")
	}
	if len(args.ServiceKeyApi) == 0 {
		return nil, errors.New("empty service API key")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &server{
		router:     router,
		history:    args.History,
		companies:  args.Companies,
		runLog:     args.RunLog,
		serviceKey: args.ServiceKeyApi,
		listenAddr: args.ListenAddress,
		reportDir:  args.ReportDir,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")
	api.Use(s.authAPIKey())
	{
		api.GET("/history", s.handleGetHistory)
		api.GET("/companies-history", s.handleGetCompaniesHistory)
		api.GET("/runs", s.handleGetRuns)
	}

	if len(s.reportDir) > 0 {
		indexFile := filepath.Join(s.reportDir, "index.html")
		s.router.StaticFile("/", indexFile)
		s.router.StaticFile("/index.html", indexFile)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.router,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		err := s.httpServer.Shutdown(ctx)
		if err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) handleGetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.history.Load())
}

func (s *server) handleGetCompaniesHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.companies.Load())
}

func (s *server) handleGetRuns(c *gin.Context) {
	limit := defaultRunsLimit
	limitParam := c.Query("limit")
	if len(limitParam) > 0 {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 || parsed > maxRunsLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := s.runLog.LatestRuns(c.Request.Context(), limit)
	if err != nil {
		log.Warn("failed to query the run log", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, runs)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
