package interpreter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/pkg/interpreter"
)

var _ = Describe("Classify", func() {
	page := func(t models.PageType) models.PageInterpretation {
		return models.PageInterpretation{Type: t}
	}

	DescribeTable("should reduce both sides to one classification",
		func(front, back models.PageInterpretation, expected interpreter.Classification) {
			result := models.InterpretationResult{Front: front, Back: back}
			Expect(interpreter.Classify(result)).To(Equal(expected))
		},
		Entry("two ballot pages", page(models.PageTypeBallot), page(models.PageTypeBallot), interpreter.ClassificationValidBallot),
		Entry("single sided ballot", page(models.PageTypeBallot), page(models.PageTypeBlank), interpreter.ClassificationValidBallot),
		Entry("both sides blank", page(models.PageTypeBlank), page(models.PageTypeBlank), interpreter.ClassificationBlank),
		Entry("overvote on the back",
			page(models.PageTypeBallot),
			models.PageInterpretation{Type: models.PageTypeBallot, Overvotes: []string{"mayor"}},
			interpreter.ClassificationNeedsReview),
		Entry("unreadable side", page(models.PageTypeBallot), page(models.PageTypeUnreadable), interpreter.ClassificationUnreadable),
		Entry("unknown page type", page(""), page(models.PageTypeBallot), interpreter.ClassificationUnreadable),
		Entry("wrong election wins over unreadable", page(models.PageTypeUnreadable), page(models.PageTypeWrongElection), interpreter.ClassificationWrongElection),
	)
})
