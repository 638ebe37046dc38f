package interpreter_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/pkg/interpreter"
)

var _ = Describe("StaticInterpreter", func() {
	It("should classify every sheet as a valid ballot", func() {
		result, err := interpreter.NewValidBallotInterpreter().Interpret(context.Background(), models.SheetImages{FrontPath: "a", BackPath: "b"})

		Expect(err).NotTo(HaveOccurred())
		Expect(interpreter.Classify(result)).To(Equal(interpreter.ClassificationValidBallot))
	})

	It("should fail on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := interpreter.NewValidBallotInterpreter().Interpret(ctx, models.SheetImages{})

		Expect(err).To(MatchError(context.Canceled))
	})
})
