package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /scanner/status)
	GetScannerStatus(c *gin.Context)
	// (POST /scanner/enable)
	EnableScanning(c *gin.Context)
	// (POST /scanner/disable)
	DisableScanning(c *gin.Context)
	// (POST /scanner/accept)
	AcceptBallot(c *gin.Context)
	// (POST /scanner/reject)
	RejectBallot(c *gin.Context)
	// (POST /scanner/clear-jam)
	ClearJam(c *gin.Context)
	// (POST /scanner/confirm-invalidated)
	ConfirmInvalidatedBallot(c *gin.Context)
	// (POST /scanner/reload-paper)
	ReloadPaper(c *gin.Context)
	// (POST /scanner/print)
	PrintBallot(c *gin.Context)
	// (GET /sheets)
	ListSheets(c *gin.Context, params ListSheetsParams)
	// (GET /sheets/{id})
	GetSheet(c *gin.Context, id string)
	// (GET /events)
	ListEvents(c *gin.Context, params ListEventsParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler      ServerInterface
	ErrorHandler func(*gin.Context, error, int)
}

// ListSheets operation middleware
func (siw *ServerInterfaceWrapper) ListSheets(c *gin.Context) {
	var params ListSheetsParams

	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter limit: %w", err), http.StatusBadRequest)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", c.Request.URL.Query(), &params.Offset); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter offset: %w", err), http.StatusBadRequest)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "batch", c.Request.URL.Query(), &params.Batch); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter batch: %w", err), http.StatusBadRequest)
		return
	}

	if err := runtime.BindQueryParameter("form", true, false, "filter", c.Request.URL.Query(), &params.Filter); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter filter: %w", err), http.StatusBadRequest)
		return
	}

	siw.Handler.ListSheets(c, params)
}

// GetSheet operation middleware
func (siw *ServerInterfaceWrapper) GetSheet(c *gin.Context) {
	var id string

	if err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, c.Param("id"), &id); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter id: %w", err), http.StatusBadRequest)
		return
	}

	siw.Handler.GetSheet(c, id)
}

// ListEvents operation middleware
func (siw *ServerInterfaceWrapper) ListEvents(c *gin.Context) {
	var params ListEventsParams

	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter limit: %w", err), http.StatusBadRequest)
		return
	}

	if err := runtime.BindQueryParameter("form", true, false, "filter", c.Request.URL.Query(), &params.Filter); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter filter: %w", err), http.StatusBadRequest)
		return
	}

	siw.Handler.ListEvents(c, params)
}

// RegisterHandlers adds each server route to the router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandler: func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, gin.H{"error": err.Error()})
		},
	}

	router.GET("/scanner/status", si.GetScannerStatus)
	router.POST("/scanner/enable", si.EnableScanning)
	router.POST("/scanner/disable", si.DisableScanning)
	router.POST("/scanner/accept", si.AcceptBallot)
	router.POST("/scanner/reject", si.RejectBallot)
	router.POST("/scanner/clear-jam", si.ClearJam)
	router.POST("/scanner/confirm-invalidated", si.ConfirmInvalidatedBallot)
	router.POST("/scanner/reload-paper", si.ReloadPaper)
	router.POST("/scanner/print", si.PrintBallot)
	router.GET("/sheets", wrapper.ListSheets)
	router.GET("/sheets/:id", wrapper.GetSheet)
	router.GET("/events", wrapper.ListEvents)
}
