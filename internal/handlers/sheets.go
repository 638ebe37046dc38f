package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/votingworks/paper-handler/api/v1"
	"github.com/votingworks/paper-handler/internal/store"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
	"github.com/votingworks/paper-handler/pkg/filter"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListSheets returns the accepted sheets with pagination
// (GET /sheets)
func (h *Handler) ListSheets(c *gin.Context, params v1.ListSheetsParams) {
	if params.Offset != nil && *params.Offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset cannot be negative"})
		return
	}

	var filters []store.ListOption
	if params.Batch != nil && *params.Batch != "" {
		filters = append(filters, store.ByBatch(*params.Batch))
	}
	if params.Filter != nil && *params.Filter != "" {
		cond, err := filter.Compile(*params.Filter, store.SheetFields)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filters = append(filters, store.WithFilter(cond))
	}

	opts := append([]store.ListOption{}, filters...)
	opts = append(opts, store.WithLimit(uint64(pageSize(params.Limit))))
	if params.Offset != nil {
		opts = append(opts, store.WithOffset(uint64(*params.Offset)))
	}

	sheets, err := h.sheets.List(c.Request.Context(), opts...)
	if err != nil {
		zap.S().Named("sheets_handler").Errorw("failed to list sheets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sheets"})
		return
	}

	total, err := h.sheets.Count(c.Request.Context(), filters...)
	if err != nil {
		zap.S().Named("sheets_handler").Errorw("failed to count sheets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sheets"})
		return
	}

	c.JSON(http.StatusOK, v1.NewSheetList(sheets, total))
}

// GetSheet returns one accepted sheet
// (GET /sheets/{id})
func (h *Handler) GetSheet(c *gin.Context, id string) {
	sheet, err := h.sheets.Get(c.Request.Context(), id)
	if err != nil {
		switch err.(type) {
		case *srvErrors.ResourceNotFoundError:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			zap.S().Named("sheets_handler").Errorw("failed to get sheet", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sheet"})
		}
		return
	}

	c.JSON(http.StatusOK, v1.NewSheet(*sheet))
}

// ListEvents returns the latest scanner audit events
// (GET /events)
func (h *Handler) ListEvents(c *gin.Context, params v1.ListEventsParams) {
	opts := []store.ListOption{store.WithLimit(uint64(pageSize(params.Limit)))}
	if params.Filter != nil && *params.Filter != "" {
		cond, err := filter.Compile(*params.Filter, store.EventFields)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts = append(opts, store.WithFilter(cond))
	}

	events, err := h.events.List(c.Request.Context(), opts...)
	if err != nil {
		zap.S().Named("events_handler").Errorw("failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	c.JSON(http.StatusOK, v1.NewEventList(events))
}

func pageSize(limit *int) int {
	if limit == nil || *limit <= 0 {
		return defaultPageSize
	}
	return min(*limit, maxPageSize)
}
