package server

import (
	"errors"
	"net/http"
	"time"

	"studiopanel/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const askTimeout = 30 * time.Second

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	api := e.Group("/api/panel")
	api.GET("/state", s.StateHandler)
	api.POST("/connect", s.ConnectHandler)
	api.POST("/disconnect", s.DisconnectHandler)
	api.POST("/refresh", s.RefreshHandler)

	api.POST("/devices/:id/toggle", s.ToggleHandler)
	api.PUT("/devices/:id/light", s.LightControlHandler)
	api.PUT("/devices/:id/climate", s.ClimateControlHandler)
	api.PUT("/devices/:id/name", s.RenameHandler)
	api.PUT("/devices/:id/hidden", s.HideHandler)
	api.PUT("/devices/:id/category", s.CategoryHandler)
	api.PUT("/order", s.OrderHandler)
	api.POST("/categories", s.AddCategoryHandler)
	api.DELETE("/categories/:name", s.RemoveCategoryHandler)

	api.POST("/lock/password", s.SetPasswordHandler)
	api.POST("/lock/unlock", s.UnlockHandler)
	api.POST("/lock/lock", s.LockHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.sessionActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

type renderStateDTO struct {
	Model    domain.RenderModel               `json:"model"`
	Lights   map[string]domain.LightControl   `json:"lights"`
	Climates map[string]domain.ClimateControl `json:"climates"`
	Status   domain.PanelStatus               `json:"status"`
}

func (s *Server) StateHandler(c echo.Context) error {
	res, err := s.ask(domain.GetRenderModelRequest{})
	if err != nil {
		return errorJSON(c, err)
	}
	model := res.(domain.GetRenderModelResponse)
	return c.JSON(http.StatusOK, renderStateDTO{
		Model:    model.Model,
		Lights:   model.Lights,
		Climates: model.Climates,
		Status:   model.Status,
	})
}

type connectDTO struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

func (s *Server) ConnectHandler(c echo.Context) error {
	var body connectDTO
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.ConnectRequest{URL: body.URL, Token: body.Token}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) DisconnectHandler(c echo.Context) error {
	if _, err := s.ask(domain.DisconnectRequest{}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) RefreshHandler(c echo.Context) error {
	res, err := s.ask(domain.RefreshRequest{})
	if err != nil {
		return errorJSON(c, err)
	}
	refresh := res.(domain.RefreshResponse)
	return c.JSON(http.StatusOK, map[string]any{"device_count": refresh.DeviceCount})
}

func (s *Server) ToggleHandler(c echo.Context) error {
	if _, err := s.ask(domain.ToggleDeviceRequest{EntityID: c.Param("id")}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

type lightControlDTO struct {
	Brightness *int    `json:"brightness"`
	Color      *string `json:"color"`
	ColorTemp  *int    `json:"color_temp"`
}

func (s *Server) LightControlHandler(c echo.Context) error {
	var body lightControlDTO
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	res, err := s.ask(domain.SetLightControlRequest{
		EntityID:   c.Param("id"),
		Brightness: body.Brightness,
		Color:      body.Color,
		ColorTemp:  body.ColorTemp,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res.(domain.SetLightControlResponse).Control)
}

type climateControlDTO struct {
	TargetTemp *float64 `json:"target_temp"`
	Mode       *string  `json:"mode"`
}

func (s *Server) ClimateControlHandler(c echo.Context) error {
	var body climateControlDTO
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	res, err := s.ask(domain.SetClimateControlRequest{
		EntityID:   c.Param("id"),
		TargetTemp: body.TargetTemp,
		Mode:       body.Mode,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res.(domain.SetClimateControlResponse).Control)
}

func (s *Server) RenameHandler(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.RenameDeviceRequest{EntityID: c.Param("id"), Name: body.Name}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) HideHandler(c echo.Context) error {
	var body struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.HideDeviceRequest{EntityID: c.Param("id"), Hidden: body.Hidden}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) CategoryHandler(c echo.Context) error {
	var body struct {
		Category string `json:"category"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.SetCategoryRequest{EntityID: c.Param("id"), Category: body.Category}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) OrderHandler(c echo.Context) error {
	var body struct {
		Order []string `json:"order"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.SetOrderRequest{Order: body.Order}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) AddCategoryHandler(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if _, err := s.ask(domain.AddCategoryRequest{Name: body.Name}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) RemoveCategoryHandler(c echo.Context) error {
	if _, err := s.ask(domain.RemoveCategoryRequest{Name: c.Param("name")}); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, okBody())
}

func (s *Server) SetPasswordHandler(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	res, err := s.ask(domain.SetPasswordRequest{Password: body.Password})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, lockBody(res.(domain.LockResponse)))
}

func (s *Server) UnlockHandler(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	res, err := s.ask(domain.UnlockRequest{Password: body.Password})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, lockBody(res.(domain.LockResponse)))
}

func (s *Server) LockHandler(c echo.Context) error {
	res, err := s.ask(domain.LockRequest{})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, lockBody(res.(domain.LockResponse)))
}

// ask routes a request through the session actor and unwraps its error
// envelope.
func (s *Server) ask(msg any) (any, error) {
	res, err := s.rootContext.RequestFuture(s.sessionActor, msg, askTimeout).Result()
	if err != nil {
		return nil, err
	}
	if response, ok := res.(domain.ActorResponse); ok && response.HasResponseError() {
		return res, response.GetResponseError()
	}
	return res, nil
}

func errorJSON(c echo.Context, err error) error {
	var validation *domain.ValidationError
	var transport *domain.TransportError
	var storage *domain.StorageError
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrLocked), errors.Is(err, domain.ErrIncorrectPassword):
		return c.JSON(http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, domain.ErrNotConfigured):
		return c.JSON(http.StatusConflict, errorBody(err.Error()))
	case errors.As(err, &transport), errors.As(err, &storage):
		return c.JSON(http.StatusBadGateway, errorBody(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func errorBody(message string) map[string]any {
	return map[string]any{"error": message}
}

func okBody() map[string]any {
	return map[string]any{"ok": true}
}

func lockBody(res domain.LockResponse) map[string]any {
	return map[string]any{"lock_state": res.State}
}
