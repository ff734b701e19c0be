package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/pkg/errors"
	"github.com/transit-favorites/internal/pkg/utils"
	"github.com/transit-favorites/internal/pkg/validator"
	"github.com/transit-favorites/internal/usecase"
	"github.com/transit-favorites/internal/usecase/dto"
)

// watchHeartbeat - период комментариев-пингов в SSE потоке
const watchHeartbeat = 15 * time.Second

// FavoriteHandler обрабатывает запросы к избранным местам
type FavoriteHandler struct {
	favoriteUC *usecase.FavoriteUseCase
	logger     *zap.Logger
}

// NewFavoriteHandler создает новый экземпляр FavoriteHandler
func NewFavoriteHandler(favoriteUC *usecase.FavoriteUseCase, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUC: favoriteUC,
		logger:     logger,
	}
}

// GetFavorite godoc
// @Summary Get favorite location
// @Description Возвращает текущее значение слота. data=null, если слот пуст.
// @Tags Favorites
// @Produce json
// @Param kind path string true "Favorite kind" Enums(HOME, WORK)
// @Param network path string true "Network ID" example(DB)
// @Success 200 {object} utils.SuccessResponse{data=dto.FavoriteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{kind}/{network} [get]
func (h *FavoriteHandler) GetFavorite(c *fiber.Ctx) error {
	kind, network, err := parseSlot(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	fav, err := h.favoriteUC.GetFavorite(c.UserContext(), kind, network)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ConvertFavorite(fav), nil)
}

// PutFavorite godoc
// @Summary Set favorite location
// @Description Записывает место в слот. Существующее значение заменяется целиком, uid сохраняется.
// @Tags Favorites
// @Accept json
// @Produce json
// @Param kind path string true "Favorite kind" Enums(HOME, WORK)
// @Param network path string true "Network ID" example(DB)
// @Param request body dto.SetFavoriteRequest true "Location"
// @Success 200 {object} utils.SuccessResponse{data=dto.WriteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{kind}/{network} [put]
func (h *FavoriteHandler) PutFavorite(c *fiber.Ctx) error {
	kind, network, err := parseSlot(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("Failed to parse favorite request", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	if err := validator.ValidateAppError(req); err != nil {
		return utils.SendError(c, err)
	}

	fav, err := req.ToDomain(kind, network)
	if err != nil {
		return utils.SendError(c, err)
	}

	res, err := h.favoriteUC.PutFavorite(c.UserContext(), fav)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.WriteResponse{
		UID:    res.UID,
		Change: string(res.Change),
	}, nil)
}

// DeleteFavorite godoc
// @Summary Remove favorite location
// @Description Очищает слот. Повторное удаление не является ошибкой.
// @Tags Favorites
// @Param kind path string true "Favorite kind" Enums(HOME, WORK)
// @Param network path string true "Network ID" example(DB)
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{kind}/{network} [delete]
func (h *FavoriteHandler) DeleteFavorite(c *fiber.Ctx) error {
	kind, network, err := parseSlot(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.favoriteUC.RemoveFavorite(c.UserContext(), kind, network); err != nil {
		return utils.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CountFavorites godoc
// @Summary Count favorite locations in slot
// @Tags Favorites
// @Produce json
// @Param kind path string true "Favorite kind" Enums(HOME, WORK)
// @Param network path string true "Network ID" example(DB)
// @Success 200 {object} utils.SuccessResponse{data=dto.CountResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{kind}/{network}/count [get]
func (h *FavoriteHandler) CountFavorites(c *fiber.Ctx) error {
	kind, network, err := parseSlot(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	count, err := h.favoriteUC.CountFavorites(c.UserContext(), kind, network)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CountResponse{Count: count}, nil)
}

// ListFavorites godoc
// @Summary List favorite locations of a network
// @Tags Favorites
// @Produce json
// @Param network path string true "Network ID" example(DB)
// @Success 200 {object} utils.SuccessResponse{data=[]dto.FavoriteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/networks/{network}/favorites [get]
func (h *FavoriteHandler) ListFavorites(c *fiber.Ctx) error {
	network, err := parseNetwork(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	favorites, err := h.favoriteUC.ListFavorites(c.UserContext(), network)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ConvertFavorites(favorites), &utils.Meta{Total: len(favorites)})
}

// WatchFavorite godoc
// @Summary Watch favorite location
// @Description Server-Sent Events: первое событие - текущее значение слота (null - пусто), далее каждое изменение по порядку.
// @Tags Favorites
// @Produce text/event-stream
// @Param kind path string true "Favorite kind" Enums(HOME, WORK)
// @Param network path string true "Network ID" example(DB)
// @Success 200 {string} string "event stream"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{kind}/{network}/watch [get]
func (h *FavoriteHandler) WatchFavorite(c *fiber.Ctx) error {
	kind, network, err := parseSlot(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	// поток живёт дольше обработчика, поэтому свой контекст
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := h.favoriteUC.Watch(ctx, kind, network)
	if err != nil {
		cancel()
		return utils.SendError(c, err)
	}

	slot := sub.Slot().String()
	h.logger.Debug("Watch stream opened", zap.String("slot", slot))

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer sub.Close()

		ticker := time.NewTicker(watchHeartbeat)
		defer ticker.Stop()

		var seq uint64
		for {
			select {
			case fav, ok := <-sub.Updates():
				if !ok {
					return
				}
				seq++
				if err := writeEvent(w, seq, dto.ConvertFavorite(fav)); err != nil {
					h.logger.Debug("Watch stream closed by client", zap.String("slot", slot), zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					h.logger.Debug("Watch stream closed by client", zap.String("slot", slot), zap.Error(err))
					return
				}
			}
		}
	}))

	return nil
}

// writeEvent пишет одно SSE событие и сбрасывает буфер
func writeEvent(w *bufio.Writer, seq uint64, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: favorite\ndata: %s\n\n", seq, payload); err != nil {
		return err
	}
	return w.Flush()
}

func parseSlot(c *fiber.Ctx) (domain.FavoriteKind, domain.NetworkID, error) {
	kind, ok := domain.ParseFavoriteKind(c.Params("kind"))
	if !ok {
		return "", "", errors.NewValidationError("kind", fmt.Sprintf("unknown favorite kind %q", c.Params("kind")))
	}
	network, err := parseNetwork(c)
	if err != nil {
		return "", "", err
	}
	return kind, network, nil
}
