package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mduijf/mhmot/internal/display"
	"github.com/mduijf/mhmot/internal/game"
	"github.com/mduijf/mhmot/internal/timer"
	"github.com/mduijf/mhmot/internal/updater"
)

// maxBodySize bounds request bodies; answers carry base64 drawings
const maxBodySize = 8 << 20

// DisplayController drives the serial displays
type DisplayController interface {
	ListPorts() ([]string, error)
	Configure(cfg display.Config) error
	Config() display.Config
	Update(p1, p2, p3, pot int) error
	UpdateFromSnapshot(snap *game.Snapshot) error
	Test() error
	Clear() error
}

// UpdateChecker queries the release feed
type UpdateChecker interface {
	Check(ctx context.Context) (updater.UpdateInfo, error)
}

// UpdateStatus reports the result of the last scheduled update check
type UpdateStatus interface {
	Last() (updater.UpdateInfo, bool)
}

// API serves the HTTP interface: the views, their state and the operator
// command endpoint.
type API struct {
	service  *GameService
	hub      *Hub
	timer    *timer.Countdown
	display  DisplayController
	checker  UpdateChecker
	status   UpdateStatus
	settings ServerSettings
	logger   *log.Logger

	commands map[string]commandFunc
}

// APIOption configures optional components of the API
type APIOption func(*API)

// WithHub enables the websocket endpoint
func WithHub(hub *Hub) APIOption {
	return func(a *API) { a.hub = hub }
}

// WithTimer enables the timer commands
func WithTimer(countdown *timer.Countdown) APIOption {
	return func(a *API) { a.timer = countdown }
}

// WithDisplay enables the display commands
func WithDisplay(controller DisplayController) APIOption {
	return func(a *API) { a.display = controller }
}

// WithUpdateChecker enables check_for_updates
func WithUpdateChecker(checker UpdateChecker) APIOption {
	return func(a *API) { a.checker = checker }
}

// WithUpdateStatus enables get_update_status
func WithUpdateStatus(status UpdateStatus) APIOption {
	return func(a *API) { a.status = status }
}

// NewAPI creates the HTTP API for a game service
func NewAPI(service *GameService, settings ServerSettings, logger *log.Logger, opts ...APIOption) *API {
	a := &API{
		service:  service,
		settings: settings,
		logger:   logger.WithPrefix("api"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.commands = a.buildCommands()
	return a
}

// RequestLogger logs every request with its status and latency
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		status := c.Writer.Status()
		fields := []any{"method", c.Request.Method, "path", path, "status", status, "latency", time.Since(start)}
		if status >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

// Router builds the gin engine
func (a *API) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(a.logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	api.GET("/gamestate", a.handleGameState)
	api.POST("/update_answer", a.handleUpdateAnswer)
	api.GET("/leaderboard", a.handleLeaderboard)
	api.GET("/timer", a.handleTimer)
	api.GET("/commands", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.CommandNames())
	})
	api.POST("/commands/:name", a.handleCommand)
	api.GET("/qr/:view", a.handleQRCode)

	if a.hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			a.hub.HandleWebSocket(c.Writer, c.Request)
		})
	}

	router.NoRoute(a.handleAsset)
	return router
}

func (a *API) writeError(c *gin.Context, err error) {
	status, body := classify(err)
	c.JSON(status, body)
}

func (a *API) handleGameState(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.Snapshot())
}

func (a *API) handleUpdateAnswer(c *gin.Context) {
	var req AnswerData
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(&req); err != nil {
		a.writeError(c, errors.Join(ErrInvalidRequest, err))
		return
	}
	if _, err := a.service.SubmitAnswer(req.PlayerID, req.QuestionNumber, req.ImageData); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, true)
}

func (a *API) handleLeaderboard(c *gin.Context) {
	board, err := a.service.Leaderboard()
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (a *API) handleTimer(c *gin.Context) {
	if a.timer == nil {
		a.writeError(c, ErrUnavailable)
		return
	}
	c.JSON(http.StatusOK, a.timer.State())
}

func (a *API) handleCommand(c *gin.Context) {
	name := c.Param("name")
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		a.writeError(c, errors.Join(ErrInvalidRequest, err))
		return
	}

	result, err := a.Execute(c.Request.Context(), name, body)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) handleQRCode(c *gin.Context) {
	view := c.Param("view")
	if !IsView(view) {
		c.JSON(http.StatusNotFound, ErrorData{Code: "unknown_view", Message: "unknown view: " + view})
		return
	}

	png, err := QRCodePNG(ViewURL(BaseURL(a.settings), view))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// handleAsset serves files from the assets directory. Unknown paths get
// index.html so the views can route on the client.
func (a *API) handleAsset(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
		c.JSON(http.StatusNotFound, ErrorData{Code: "not_found", Message: "no route for " + path})
		return
	}

	dir := a.settings.AssetsDir
	file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.String(http.StatusNotFound, "views not found in %s", dir)
		return
	}
	c.File(index)
}
