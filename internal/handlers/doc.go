// Package handlers implements the HTTP API of the paper handler.
//
// Handlers delegate to the paper handler service and the store. They focus on
// parameter parsing, error mapping to HTTP status codes and model-to-API conversion.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│          PaperHandlerService │ SheetStore │ EventStore          │
//	└─────────────────────────────────────────────────────────────────┘
//
// The Handler implements v1.ServerInterface and is registered with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
// Scanner Endpoints (scanner.go):
//
//	┌────────┬──────────────────────────────┬──────────────────────────────────┐
//	│ Method │ Endpoint                     │ Description                      │
//	├────────┼──────────────────────────────┼──────────────────────────────────┤
//	│ GET    │ /scanner/status              │ Current status, reason and batch │
//	│ POST   │ /scanner/enable              │ Start accepting paper            │
//	│ POST   │ /scanner/disable             │ Stop accepting paper             │
//	│ POST   │ /scanner/accept              │ Accept the presented ballot      │
//	│ POST   │ /scanner/reject              │ Return the presented ballot      │
//	│ POST   │ /scanner/clear-jam           │ Reset after a jam                │
//	│ POST   │ /scanner/confirm-invalidated │ Acknowledge invalidated ballot   │
//	│ POST   │ /scanner/reload-paper        │ Take a new sheet after a blank   │
//	│ POST   │ /scanner/print               │ Print a PDF ballot (max 16MB)    │
//	└────────┴──────────────────────────────┴──────────────────────────────────┘
//
// Every command answers with the status reached once the command was applied:
//
//	{
//	    "status": "ejecting_to_rear",
//	    "reason": null,
//	    "since": "2026-03-01T10:00:00Z",
//	    "batchId": "5f0c..."
//	}
//
// A command that is not valid in the current status answers 409 with the status
// it was rejected in:
//
//	{ "error": "command \"accept_ballot\" rejected in status \"jammed\"", "status": "jammed" }
//
// Sheet and Event Endpoints (sheets.go):
//
//	┌────────┬──────────────┬────────────────────────────────────────────────┐
//	│ Method │ Endpoint     │ Description                                    │
//	├────────┼──────────────┼────────────────────────────────────────────────┤
//	│ GET    │ /sheets      │ Accepted sheets (limit, offset, batch, filter) │
//	│ GET    │ /sheets/{id} │ Get one accepted sheet                         │
//	│ GET    │ /events      │ Latest audit events first (limit, filter)      │
//	└────────┴──────────────┴────────────────────────────────────────────────┘
//
// limit defaults to 20 and is capped at 100.
//
// filter takes an expression of the filter package, for example:
//
//	GET /events?filter=disposition = 'failure' and message ~ /jam/
//
// Sheets accept id, batch_id, accepted_at, front_image_path and back_image_path.
// Events accept id, event_id, user, disposition, message, previous_status,
// new_status and timestamp.
//
// # Error Handling
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid params, empty ballot │
//	│ filter.ParseError           │ 400    │ Malformed or unknown filter  │
//	│ ResourceNotFoundError       │ 404    │ Sheet doesn't exist          │
//	│ CommandRejectedError        │ 409    │ Command invalid in status    │
//	│ MaxBytesError               │ 413    │ Ballot exceeds 16MB          │
//	│ Internal error              │ 500    │ Unexpected errors            │
//	│ MachineNotRunningError      │ 503    │ Paper handler not started    │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
