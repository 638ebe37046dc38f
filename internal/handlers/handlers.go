package handlers

import (
	"context"

	v1 "github.com/votingworks/paper-handler/api/v1"
	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/internal/store"
)

// PaperHandler is the part of services.PaperHandlerService the API drives.
type PaperHandler interface {
	GetStatus() models.Status
	BatchID() string
	AcceptBallot(ctx context.Context) error
	RejectBallot(ctx context.Context) error
	ClearJam(ctx context.Context) error
	EnableScanning(ctx context.Context) error
	DisableScanning(ctx context.Context) error
	ConfirmInvalidatedBallot(ctx context.Context) error
	ReloadPaper(ctx context.Context) error
	PrintBallot(ctx context.Context, pdf []byte) error
}

type SheetStore interface {
	Get(ctx context.Context, id string) (*models.AcceptedSheet, error)
	List(ctx context.Context, opts ...store.ListOption) ([]models.AcceptedSheet, error)
	Count(ctx context.Context, opts ...store.ListOption) (int, error)
}

type EventStore interface {
	List(ctx context.Context, opts ...store.ListOption) ([]models.ScannerEvent, error)
}

type Handler struct {
	paperHandler PaperHandler
	sheets       SheetStore
	events       EventStore
}

var _ v1.ServerInterface = (*Handler)(nil)

func New(paperHandler PaperHandler, sheets SheetStore, events EventStore) *Handler {
	return &Handler{
		paperHandler: paperHandler,
		sheets:       sheets,
		events:       events,
	}
}
