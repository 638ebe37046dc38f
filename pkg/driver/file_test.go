package driver_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/votingworks/paper-handler/internal/models"
	"github.com/votingworks/paper-handler/pkg/driver"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

var _ = Describe("FileDriver", func() {
	const (
		inbox  = "/scanner/inbox"
		images = "/scanner/images"
	)

	var (
		ctx context.Context
		fs  afero.Fs
		d   *driver.FileDriver
	)

	writeSheet := func(name string) {
		Expect(afero.WriteFile(fs, filepath.Join(inbox, name+"-front.png"), []byte("front"), 0o644)).To(Succeed())
		Expect(afero.WriteFile(fs, filepath.Join(inbox, name+"-back.png"), []byte("back"), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		fs = afero.NewMemMapFs()
		d = driver.NewFileDriver(fs, inbox, images)
		Expect(d.Connect(ctx)).To(Succeed())
	})

	Context("GetPaperStatus", func() {
		It("should report no paper for an empty inbox", func() {
			status, err := d.GetPaperStatus(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.PaperAbsent()).To(BeTrue())
		})

		It("should ignore a sheet with only one side", func() {
			Expect(afero.WriteFile(fs, filepath.Join(inbox, "s1-front.png"), []byte("front"), 0o644)).To(Succeed())

			status, err := d.GetPaperStatus(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.PaperAbsent()).To(BeTrue())
		})

		It("should report a complete pair as paper present", func() {
			writeSheet("s1")

			status, err := d.GetPaperStatus(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.FrontSensor).To(BeTrue())
		})

		It("should report a jam marker", func() {
			Expect(afero.WriteFile(fs, filepath.Join(inbox, "JAM"), nil, 0o644)).To(Succeed())

			status, err := d.GetPaperStatus(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.Jammed).To(BeTrue())
		})
	})

	Context("Scan and eject", func() {
		// Given a sheet pair with sidecars in the inbox
		// When the sheet is loaded and scanned
		// Then both images and sidecars should be copied to the images folder
		It("should copy images and sidecars when scanning", func() {
			writeSheet("s1")
			Expect(afero.WriteFile(fs, filepath.Join(inbox, "s1-front.yaml"), []byte("type: ballot\n"), 0o644)).To(Succeed())
			Expect(d.MoveTo(ctx, models.PositionInternal)).To(Succeed())

			sheet, err := d.Scan(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Dir(sheet.FrontPath)).To(Equal(images))
			data, err := afero.ReadFile(fs, sheet.BackPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("back"))
			ok, err := afero.Exists(fs, sheet.FrontPath[:len(sheet.FrontPath)-len(".png")]+".yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should move accepted sheets out of the inbox", func() {
			writeSheet("s1")
			Expect(d.MoveTo(ctx, models.PositionInternal)).To(Succeed())

			Expect(d.Eject(ctx, models.EjectRear)).To(Succeed())

			ok, err := afero.Exists(fs, filepath.Join(inbox, "accepted", "s1-front.png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			status, err := d.GetPaperStatus(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.PaperAbsent()).To(BeTrue())
		})

		It("should move returned sheets to the returned folder", func() {
			writeSheet("s1")
			Expect(d.MoveTo(ctx, models.PositionInternal)).To(Succeed())

			Expect(d.Eject(ctx, models.EjectFront)).To(Succeed())

			ok, err := afero.Exists(fs, filepath.Join(inbox, "returned", "s1-back.png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should load sheets in name order", func() {
			writeSheet("b")
			writeSheet("a")
			Expect(d.MoveTo(ctx, models.PositionInternal)).To(Succeed())
			Expect(d.Eject(ctx, models.EjectRear)).To(Succeed())

			ok, err := afero.Exists(fs, filepath.Join(inbox, "accepted", "a-front.png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should fail to load when no sheet is present", func() {
			err := d.MoveTo(ctx, models.PositionInternal)

			Expect(srvErrors.DriverErrorCodeOf(err)).To(Equal(srvErrors.DriverErrorNoPaper))
		})

		It("should write printed ballots", func() {
			writeSheet("s1")
			Expect(d.MoveTo(ctx, models.PositionInternal)).To(Succeed())

			Expect(d.Print(ctx, []byte("%PDF"))).To(Succeed())

			data, err := afero.ReadFile(fs, filepath.Join(inbox, "printed", "s1.pdf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("%PDF"))
		})
	})
})
