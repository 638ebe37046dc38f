package interpreter

import (
	"context"

	"github.com/votingworks/paper-handler/internal/models"
)

// StaticInterpreter returns the same result for every sheet. It pairs with the
// mock driver when no real interpretation is available.
type StaticInterpreter struct {
	result models.InterpretationResult
}

func NewStaticInterpreter(result models.InterpretationResult) *StaticInterpreter {
	return &StaticInterpreter{result: result}
}

// NewValidBallotInterpreter reads every sheet as a ballot with a blank back.
func NewValidBallotInterpreter() *StaticInterpreter {
	return NewStaticInterpreter(models.InterpretationResult{
		Front: models.PageInterpretation{Type: models.PageTypeBallot},
		Back:  models.PageInterpretation{Type: models.PageTypeBlank},
	})
}

func (s *StaticInterpreter) Interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error) {
	if err := ctx.Err(); err != nil {
		return models.InterpretationResult{}, err
	}
	return s.result, nil
}
