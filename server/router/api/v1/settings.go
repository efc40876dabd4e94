package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
)

// TimeDefaultsResponse carries the caller's effective period defaults.
type TimeDefaultsResponse struct {
	TimeDefaults aitime.TimeDefaults `json:"timeDefaults"`
}

// GetTimeDefaults returns the caller's period defaults.
// GET /api/v1/settings/time-defaults
func (s *APIV1Service) GetTimeDefaults(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	defaults, err := s.Store.GetTimeDefaults(c.Request().Context(), uid)
	if err != nil {
		return apierrors.Internal("failed to load time defaults", err)
	}
	return c.JSON(http.StatusOK, TimeDefaultsResponse{TimeDefaults: defaults})
}

// UpdateTimeDefaults replaces some or all period defaults. Any malformed
// entry rejects the whole update.
// PUT /api/v1/settings/time-defaults
func (s *APIV1Service) UpdateTimeDefaults(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	req := &TimeDefaultsResponse{}
	if err := bind(c, req); err != nil {
		return err
	}
	if len(req.TimeDefaults) == 0 {
		return apierrors.InvalidArgument("timeDefaults is required")
	}
	if err := req.TimeDefaults.Validate(); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
	}

	merged, err := s.Store.UpsertTimeDefaults(c.Request().Context(), uid, req.TimeDefaults)
	if err != nil {
		return apierrors.Internal("failed to save time defaults", err)
	}
	return c.JSON(http.StatusOK, TimeDefaultsResponse{TimeDefaults: merged})
}
