package v1

import (
	"github.com/votingworks/paper-handler/internal/models"
)

func NewScannerStatus(status models.Status, batchID string) ScannerStatus {
	s := ScannerStatus{
		Status: ScannerStatusStatus(status.SimpleStatus),
		Since:  status.Since,
	}
	if status.SimpleStatus == "" {
		s.Status = ScannerStatusStatusNoHardware
	}
	if status.Reason != "" {
		reason := status.Reason
		s.Reason = &reason
	}
	if batchID != "" {
		s.BatchId = &batchID
	}
	return s
}

func NewPageInterpretation(p models.PageInterpretation) PageInterpretation {
	var i PageInterpretation

	switch p.Type {
	case models.PageTypeBallot:
		i.Type = PageInterpretationTypeBallot
	case models.PageTypeBlank:
		i.Type = PageInterpretationTypeBlank
	case models.PageTypeWrongElection:
		i.Type = PageInterpretationTypeWrongElection
	default:
		i.Type = PageInterpretationTypeUnreadable
	}

	if p.BallotID != "" {
		id := p.BallotID
		i.BallotId = &id
	}
	if len(p.Overvotes) > 0 {
		overvotes := append([]string(nil), p.Overvotes...)
		i.Overvotes = &overvotes
	}
	if len(p.Undervotes) > 0 {
		undervotes := append([]string(nil), p.Undervotes...)
		i.Undervotes = &undervotes
	}
	if p.Reason != "" {
		reason := p.Reason
		i.Reason = &reason
	}

	return i
}

func NewSheet(sheet models.AcceptedSheet) Sheet {
	return Sheet{
		Id:                  sheet.ID,
		BatchId:             sheet.BatchID,
		FrontImagePath:      sheet.FrontImagePath,
		BackImagePath:       sheet.BackImagePath,
		FrontInterpretation: NewPageInterpretation(sheet.FrontInterpretation),
		BackInterpretation:  NewPageInterpretation(sheet.BackInterpretation),
		AcceptedAt:          sheet.AcceptedAt,
	}
}

func NewSheetList(sheets []models.AcceptedSheet, total int) SheetList {
	l := SheetList{Sheets: make([]Sheet, 0, len(sheets)), Total: total}
	for _, s := range sheets {
		l.Sheets = append(l.Sheets, NewSheet(s))
	}
	return l
}

func NewScannerEvent(event models.ScannerEvent) ScannerEvent {
	e := ScannerEvent{
		Id:        event.ID,
		EventId:   event.EventID,
		User:      event.User,
		Message:   event.Message,
		Timestamp: event.Timestamp,
	}

	switch event.Disposition {
	case models.DispositionSuccess:
		e.Disposition = ScannerEventDispositionSuccess
	case models.DispositionFailure:
		e.Disposition = ScannerEventDispositionFailure
	default:
		e.Disposition = ScannerEventDispositionNa
	}

	if event.PreviousStatus != "" {
		prev := ScannerStatusStatus(event.PreviousStatus)
		e.PreviousStatus = &prev
	}
	if event.NewStatus != "" {
		next := ScannerStatusStatus(event.NewStatus)
		e.NewStatus = &next
	}

	return e
}

func NewEventList(events []models.ScannerEvent) EventList {
	l := EventList{Events: make([]ScannerEvent, 0, len(events))}
	for _, e := range events {
		l.Events = append(l.Events, NewScannerEvent(e))
	}
	return l
}

func NewCommandRejected(err error, status models.SimpleStatus) CommandRejected {
	return CommandRejected{
		Error:  err.Error(),
		Status: ScannerStatusStatus(status),
	}
}
