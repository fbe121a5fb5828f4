package api

import (
	models "OilSim/internal/domain/models"
	"OilSim/internal/usecase"
	xhttp "OilSim/pkg/http"
	xlogger "OilSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SessionsEchoHandler exposes the simulator over HTTP: session lifecycle,
// trading, scenario catalog and the leaderboard.
type SessionsEchoHandler struct {
	logger  *xlogger.Logger
	manager *usecase.SessionManager
	stream  *StreamHandler
}

func NewSessionsEchoHandler(logger *xlogger.Logger, manager *usecase.SessionManager) *SessionsEchoHandler {
	return &SessionsEchoHandler{
		logger:  logger,
		manager: manager,
		stream:  NewStreamHandler(logger, manager),
	}
}

func (h *SessionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/sessions", h.Create)
	g.GET("/sessions/:id", h.Get)
	g.POST("/sessions/:id/trades", h.Trade)
	g.POST("/sessions/:id/flatten", h.Flatten)
	g.POST("/sessions/:id/finish", h.Finish)
	g.GET("/sessions/:id/stream", h.stream.Stream)
	g.GET("/scenarios", h.Scenarios)
	g.GET("/scenarios/:name", h.Scenario)
	g.GET("/leaderboard", h.Leaderboard)
}

func (h *SessionsEchoHandler) Create(c echo.Context) error {
	req := &models.CreateSessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	s, err := h.manager.Create(req)
	if err != nil {
		h.logger.Error("create session error", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.CreatedResponse(c, s.State())
}

func (h *SessionsEchoHandler) Get(c echo.Context) error {
	s, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, s.State())
}

func (h *SessionsEchoHandler) Trade(c echo.Context) error {
	req := &models.TradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.manager.Trade(c.Param("id"), req)
	if err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *SessionsEchoHandler) Flatten(c echo.Context) error {
	snap, err := h.manager.Flatten(c.Param("id"))
	if err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *SessionsEchoHandler) Finish(c echo.Context) error {
	r, err := h.manager.Finish(c.Param("id"))
	if err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, r)
}

func (h *SessionsEchoHandler) Scenarios(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.manager.Scenarios())
}

func (h *SessionsEchoHandler) Scenario(c echo.Context) error {
	sc, ok := h.manager.ScenarioInfo(c.Param("name"))
	if !ok {
		return xhttp.NotFoundResponse(c, "unknown scenario")
	}
	return xhttp.SuccessResponse(c, sc)
}

func (h *SessionsEchoHandler) Leaderboard(c echo.Context) error {
	n := xhttp.ParseIntDefault(c.QueryParam("n"), 25)
	entries, err := h.manager.Top(c.Request().Context(), n)
	if err != nil {
		h.logger.Error("leaderboard error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("leaderboard unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, entries)
}
