package interpreter_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
	"github.com/votingworks/paper-handler/pkg/interpreter"
)

var _ = Describe("SidecarInterpreter", func() {
	var (
		ctx    context.Context
		fs     afero.Fs
		interp *interpreter.SidecarInterpreter
		images models.SheetImages
	)

	BeforeEach(func() {
		ctx = context.Background()
		fs = afero.NewMemMapFs()
		interp = interpreter.NewSidecarInterpreter(fs)
		images = models.SheetImages{FrontPath: "/images/s1-front.png", BackPath: "/images/s1-back.png"}
	})

	// Given sidecar files for both sides
	// When the sheet is interpreted
	// Then each side should carry the sidecar content
	It("should read both sidecars", func() {
		Expect(afero.WriteFile(fs, "/images/s1-front.yaml", []byte("type: ballot\nballotId: p1\novervotes: [mayor]\n"), 0o644)).To(Succeed())
		Expect(afero.WriteFile(fs, "/images/s1-back.yaml", []byte("type: blank\n"), 0o644)).To(Succeed())

		result, err := interp.Interpret(ctx, images)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Front.Type).To(Equal(models.PageTypeBallot))
		Expect(result.Front.BallotID).To(Equal("p1"))
		Expect(result.Front.Overvotes).To(ConsistOf("mayor"))
		Expect(result.Back.Type).To(Equal(models.PageTypeBlank))
		Expect(interpreter.Classify(result)).To(Equal(interpreter.ClassificationNeedsReview))
	})

	It("should treat a missing sidecar as unreadable", func() {
		Expect(afero.WriteFile(fs, "/images/s1-front.yaml", []byte("type: ballot\n"), 0o644)).To(Succeed())

		result, err := interp.Interpret(ctx, images)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Back.Type).To(Equal(models.PageTypeUnreadable))
	})

	It("should return an InterpretationError for malformed YAML", func() {
		Expect(afero.WriteFile(fs, "/images/s1-front.yaml", []byte("type: [ballot\n"), 0o644)).To(Succeed())

		_, err := interp.Interpret(ctx, images)

		Expect(err).To(HaveOccurred())
		Expect(srvErrors.IsInterpretationError(err)).To(BeTrue())
	})

	It("should be idempotent", func() {
		Expect(afero.WriteFile(fs, "/images/s1-front.yaml", []byte("type: ballot\n"), 0o644)).To(Succeed())
		Expect(afero.WriteFile(fs, "/images/s1-back.yaml", []byte("type: ballot\n"), 0o644)).To(Succeed())

		first, err := interp.Interpret(ctx, images)
		Expect(err).NotTo(HaveOccurred())
		second, err := interp.Interpret(ctx, images)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
	})
})
