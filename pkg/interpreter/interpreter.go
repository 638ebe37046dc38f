// Package interpreter classifies scanned sheets.
//
// The paper handler treats interpretation as a black box: it hands an image pair
// to an Interpreter and reduces the per-side result to a single Classification.
package interpreter

import (
	"context"

	"github.com/votingworks/paper-handler/internal/models"
)

// Interpreter reads both sides of a scanned sheet. Implementations must be
// idempotent and free of side effects visible to the paper handler.
type Interpreter interface {
	Interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error)
}

// Classification is the verdict for a whole sheet.
type Classification string

const (
	ClassificationValidBallot   Classification = "valid_ballot"
	ClassificationNeedsReview   Classification = "needs_review"
	ClassificationBlank         Classification = "blank"
	ClassificationWrongElection Classification = "wrong_election"
	ClassificationUnreadable    Classification = "unreadable"
)

// Classify reduces the interpretation of both sides to a single verdict.
//
// Precedence: wrong election, unreadable, blank (both sides), needs review
// (overvotes on any side), valid ballot.
func Classify(r models.InterpretationResult) Classification {
	sides := []models.PageInterpretation{r.Front, r.Back}

	for _, p := range sides {
		if p.Type == models.PageTypeWrongElection {
			return ClassificationWrongElection
		}
	}
	for _, p := range sides {
		switch p.Type {
		case models.PageTypeBallot, models.PageTypeBlank:
		default:
			return ClassificationUnreadable
		}
	}
	if r.Front.Type == models.PageTypeBlank && r.Back.Type == models.PageTypeBlank {
		return ClassificationBlank
	}
	for _, p := range sides {
		if len(p.Overvotes) > 0 {
			return ClassificationNeedsReview
		}
	}
	return ClassificationValidBallot
}
