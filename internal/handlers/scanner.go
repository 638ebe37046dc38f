package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/votingworks/paper-handler/api/v1"
	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

const maxBallotSize = 16 << 20 // max 16Mb

// GetScannerStatus returns the paper handler status
// (GET /scanner/status)
func (h *Handler) GetScannerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewScannerStatus(h.paperHandler.GetStatus(), h.paperHandler.BatchID()))
}

// EnableScanning starts accepting paper
// (POST /scanner/enable)
func (h *Handler) EnableScanning(c *gin.Context) {
	h.command(c, "enable scanning", h.paperHandler.EnableScanning)
}

// DisableScanning stops accepting paper
// (POST /scanner/disable)
func (h *Handler) DisableScanning(c *gin.Context) {
	h.command(c, "disable scanning", h.paperHandler.DisableScanning)
}

// AcceptBallot drops the presented ballot into the box
// (POST /scanner/accept)
func (h *Handler) AcceptBallot(c *gin.Context) {
	h.command(c, "accept ballot", h.paperHandler.AcceptBallot)
}

// RejectBallot returns the presented ballot to the voter
// (POST /scanner/reject)
func (h *Handler) RejectBallot(c *gin.Context) {
	h.command(c, "reject ballot", h.paperHandler.RejectBallot)
}

// ClearJam resets the paper handler after a jam
// (POST /scanner/clear-jam)
func (h *Handler) ClearJam(c *gin.Context) {
	h.command(c, "clear jam", h.paperHandler.ClearJam)
}

// ConfirmInvalidatedBallot acknowledges an invalidated ballot
// (POST /scanner/confirm-invalidated)
func (h *Handler) ConfirmInvalidatedBallot(c *gin.Context) {
	h.command(c, "confirm invalidated ballot", h.paperHandler.ConfirmInvalidatedBallot)
}

// ReloadPaper accepts a new sheet after a blank page
// (POST /scanner/reload-paper)
func (h *Handler) ReloadPaper(c *gin.Context) {
	h.command(c, "reload paper", h.paperHandler.ReloadPaper)
}

// PrintBallot prints the PDF in the request body on the loaded sheet
// (POST /scanner/print)
func (h *Handler) PrintBallot(c *gin.Context) {
	pdf, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBallotSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "ballot exceeds 16MB"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read ballot"})
		return
	}
	if len(pdf) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ballot is required"})
		return
	}

	h.command(c, "print ballot", func(ctx context.Context) error {
		return h.paperHandler.PrintBallot(ctx, pdf)
	})
}

func (h *Handler) command(c *gin.Context, name string, fn func(ctx context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		switch e := err.(type) {
		case *srvErrors.CommandRejectedError:
			c.JSON(http.StatusConflict, v1.NewCommandRejected(e, models.SimpleStatus(e.Status)))
		case *srvErrors.MachineNotRunningError:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			zap.S().Named("scanner_handler").Errorw("command failed", "command", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + name})
		}
		return
	}

	c.JSON(http.StatusOK, v1.NewScannerStatus(h.paperHandler.GetStatus(), h.paperHandler.BatchID()))
}
