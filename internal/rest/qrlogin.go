package rest

import (
	"context"
	"net/http"
	"time"

	"shopsphere/business/qrlogin"
	"shopsphere/domain"
	jsonres "shopsphere/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type QRLoginService interface {
	Generate(ctx context.Context) (*qrlogin.GenerateResult, error)
	Scan(ctx context.Context, sessionID, qrToken string) error
	Authenticate(ctx context.Context, sessionID, qrToken string, userID uint) error
	PollStatus(ctx context.Context, sessionID string) (*qrlogin.StatusResult, error)
}

type QRLoginHandler struct {
	qrService QRLoginService
	validator *validator.Validate
	timeout   time.Duration
}

func NewQRLoginHandler(qrService QRLoginService) *QRLoginHandler {
	return &QRLoginHandler{
		qrService: qrService,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type QRSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	QRToken   string `json:"qr_token" validate:"required"`
}

// Generate creates a pending QR login session for the unauthenticated
// device.
func (h *QRLoginHandler) Generate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.qrService.Generate(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.OK(http.StatusCreated, result))
}

// Scan is called by the mobile app after decoding the QR payload.
func (h *QRLoginHandler) Scan(c echo.Context) error {
	var req QRSessionRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.qrService.Scan(ctx, req.SessionID, req.QRToken); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Session scanned",
	}))
}

// Authenticate is called by the logged-in mobile app to approve the login.
func (h *QRLoginHandler) Authenticate(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req QRSessionRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.qrService.Authenticate(ctx, req.SessionID, req.QRToken, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, map[string]interface{}{
		"message": "Session authenticated",
	}))
}

// Status is polled by the desktop device waiting for approval.
func (h *QRLoginHandler) Status(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return domain.NewBadRequest("session id is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.qrService.PollStatus(ctx, sessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.OK(http.StatusOK, result))
}
