package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/pkg/errors"
	"github.com/transit-favorites/internal/pkg/utils"
	"github.com/transit-favorites/internal/pkg/validator"
	"github.com/transit-favorites/internal/usecase"
	"github.com/transit-favorites/internal/usecase/dto"
)

// SavedLocationHandler обрабатывает запросы к списку использованных мест
type SavedLocationHandler struct {
	savedUC *usecase.SavedLocationUseCase
	logger  *zap.Logger
}

// NewSavedLocationHandler создает новый экземпляр SavedLocationHandler
func NewSavedLocationHandler(savedUC *usecase.SavedLocationUseCase, logger *zap.Logger) *SavedLocationHandler {
	return &SavedLocationHandler{
		savedUC: savedUC,
		logger:  logger,
	}
}

// RecordUse godoc
// @Summary Record use of a location
// @Description Увеличивает счётчик роли у совпадающего места или добавляет новое. Координаты (COORDINATE) не сохраняются.
// @Tags Saved
// @Accept json
// @Produce json
// @Param network path string true "Network ID" example(DB)
// @Param request body dto.RecordUseRequest true "Role and location"
// @Success 200 {object} utils.SuccessResponse{data=dto.RecordUseResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/networks/{network}/saved [post]
func (h *SavedLocationHandler) RecordUse(c *fiber.Ctx) error {
	network, err := parseNetwork(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.RecordUseRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("Failed to parse record request", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	if err := validator.ValidateAppError(req); err != nil {
		return utils.SendError(c, err)
	}

	role, loc, err := req.ToDomain()
	if err != nil {
		return utils.SendError(c, err)
	}

	res, err := h.savedUC.RecordUse(c.UserContext(), network, loc, role)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.RecordUseResponse{
		Created: res.Created,
		Saved:   dto.ConvertSavedLocation(res.Saved),
	}, nil)
}

// ListSaved godoc
// @Summary List saved locations of a network
// @Description Самые частые в роли role первыми; без role - по сумме счётчиков.
// @Tags Saved
// @Produce json
// @Param network path string true "Network ID" example(DB)
// @Param role query string false "Usage role" Enums(FROM, VIA, TO)
// @Success 200 {object} utils.SuccessResponse{data=[]dto.SavedLocationResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/networks/{network}/saved [get]
func (h *SavedLocationHandler) ListSaved(c *fiber.Ctx) error {
	network, err := parseNetwork(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var role domain.UsageRole
	if raw := c.Query("role"); raw != "" {
		r, ok := domain.ParseUsageRole(raw)
		if !ok {
			return utils.SendError(c, errors.NewValidationError("role", fmt.Sprintf("unknown usage role %q", raw)))
		}
		role = r
	}

	list, err := h.savedUC.ListSaved(c.UserContext(), network, role)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ConvertSavedLocations(list), &utils.Meta{Total: len(list)})
}

// FindSaved godoc
// @Summary Find saved location by content
// @Description Ищет место с теми же type, id, координатами, place и name.
// @Tags Saved
// @Accept json
// @Produce json
// @Param network path string true "Network ID" example(DB)
// @Param request body dto.LocationRequest true "Location"
// @Success 200 {object} utils.SuccessResponse{data=dto.SavedLocationResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/networks/{network}/saved/lookup [post]
func (h *SavedLocationHandler) FindSaved(c *fiber.Ctx) error {
	network, err := parseNetwork(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	if err := validator.ValidateAppError(req); err != nil {
		return utils.SendError(c, err)
	}

	loc, err := req.ToLocation()
	if err != nil {
		return utils.SendError(c, err)
	}

	saved, err := h.savedUC.FindSaved(c.UserContext(), network, loc)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ConvertSavedLocation(saved), nil)
}

// RemoveSaved godoc
// @Summary Remove saved location
// @Tags Saved
// @Param network path string true "Network ID" example(DB)
// @Param uid path int true "Saved location uid"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/networks/{network}/saved/{uid} [delete]
func (h *SavedLocationHandler) RemoveSaved(c *fiber.Ctx) error {
	network, err := parseNetwork(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	uid, err := strconv.ParseInt(c.Params("uid"), 10, 64)
	if err != nil {
		return utils.SendError(c, errors.NewValidationError("uid", "must be an integer"))
	}

	if err := h.savedUC.RemoveSaved(c.UserContext(), network, uid); err != nil {
		return utils.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseNetwork(c *fiber.Ctx) (domain.NetworkID, error) {
	network, ok := domain.ParseNetworkID(c.Params("network"))
	if !ok {
		return "", errors.NewValidationError("network_id", fmt.Sprintf("unknown network %q", c.Params("network")))
	}
	return network, nil
}
