package rest

import (
	"net/http"

	"shopsphere/domain"
	jsonres "shopsphere/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// BehaviorTracker enqueues events; it never blocks the request.
type BehaviorTracker interface {
	Track(userID uint, eventType string, productID uint64, eventData map[string]any)
}

type BehaviorHandler struct {
	tracker   BehaviorTracker
	validator *validator.Validate
}

func NewBehaviorHandler(tracker BehaviorTracker) *BehaviorHandler {
	return &BehaviorHandler{
		tracker:   tracker,
		validator: validator.New(),
	}
}

type TrackEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	ProductID uint64         `json:"product_id,omitempty"`
	EventData map[string]any `json:"event_data,omitempty"`
}

// Track accepts a behavior event and returns immediately; persistence is
// asynchronous and best effort.
func (h *BehaviorHandler) Track(c echo.Context) error {
	userID := callerID(c)
	if userID == 0 {
		return domain.NewUnauthorized("user not authenticated")
	}

	var req TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewBadRequest("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return domain.NewBadRequest("%s", err.Error())
	}

	if !domain.ValidEventTypes[req.EventType] {
		return domain.NewBadRequest("unknown event type %q", req.EventType)
	}

	h.tracker.Track(userID, req.EventType, req.ProductID, req.EventData)

	return c.JSON(http.StatusAccepted, jsonres.OK(http.StatusAccepted, map[string]interface{}{
		"message": "Event accepted",
	}))
}
