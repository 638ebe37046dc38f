package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

const (
	frontSuffix = "-front"
	backSuffix  = "-back"

	jamMarker       = "JAM"
	coverOpenMarker = "COVER_OPEN"

	acceptedFolder = "accepted"
	returnedFolder = "returned"
	printedFolder  = "printed"
)

// FileDriver simulates a paper handler with files.
//
// A sheet is inserted by dropping "<name>-front.<ext>" and "<name>-back.<ext>" into
// the inbox folder. A "JAM" file in the inbox reports a jam and a "COVER_OPEN" file
// reports an open cover. Scanning copies the pair (and its ".yaml" sidecars when
// present) into the images folder. Ejecting moves the pair to "accepted" (rear) or
// "returned" (front).
type FileDriver struct {
	fs        afero.Fs
	inbox     string
	imagesDir string
	log       *zap.SugaredLogger

	mu        sync.Mutex
	connected bool
	loaded    *filePair
}

type filePair struct {
	name  string
	front string
	back  string
}

func NewFileDriver(fs afero.Fs, inbox, imagesDir string) *FileDriver {
	return &FileDriver{
		fs:        fs,
		inbox:     inbox,
		imagesDir: imagesDir,
		log:       zap.S().Named("file_driver"),
	}
}

func (f *FileDriver) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, dir := range []string{
		f.inbox,
		f.imagesDir,
		filepath.Join(f.inbox, acceptedFolder),
		filepath.Join(f.inbox, returnedFolder),
		filepath.Join(f.inbox, printedFolder),
	} {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return srvErrors.NewDriverError(string(OpConnect), srvErrors.DriverErrorDisconnected, err)
		}
	}
	f.connected = true
	f.log.Debugw("connected", "inbox", f.inbox)
	return nil
}

func (f *FileDriver) GetPaperStatus(ctx context.Context) (models.ScannerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return models.ScannerStatus{}, srvErrors.NewDriverError(string(OpGetPaperStatus), srvErrors.DriverErrorDisconnected, nil)
	}

	var sensors uint32
	if f.markerExists(jamMarker) {
		sensors |= models.SensorJam
	}
	if f.markerExists(coverOpenMarker) {
		sensors |= models.SensorCoverOpen
	}

	if f.loaded != nil {
		sensors |= models.SensorBackPaper
	} else {
		pair, err := f.nextPair()
		if err != nil {
			return models.ScannerStatus{}, srvErrors.NewDriverError(string(OpGetPaperStatus), srvErrors.DriverErrorHardware, err)
		}
		if pair != nil {
			sensors |= models.SensorFrontPaper
		}
	}

	return models.NewScannerStatus(sensors), nil
}

func (f *FileDriver) MoveTo(ctx context.Context, position models.PaperPosition) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkReady(OpMoveTo); err != nil {
		return err
	}

	if f.loaded == nil {
		pair, err := f.nextPair()
		if err != nil {
			return srvErrors.NewDriverError(string(OpMoveTo), srvErrors.DriverErrorHardware, err)
		}
		if pair == nil {
			return srvErrors.NewDriverError(string(OpMoveTo), srvErrors.DriverErrorNoPaper, nil)
		}
		f.loaded = pair
	}
	f.log.Debugw("sheet moved", "sheet", f.loaded.name, "position", position)
	return nil
}

func (f *FileDriver) Scan(ctx context.Context) (models.SheetImages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkReady(OpScan); err != nil {
		return models.SheetImages{}, err
	}
	if f.loaded == nil {
		return models.SheetImages{}, srvErrors.NewDriverError(string(OpScan), srvErrors.DriverErrorNoPaper, nil)
	}

	id := uuid.NewString()
	front, err := f.copyImage(f.loaded.front, id+frontSuffix)
	if err != nil {
		return models.SheetImages{}, srvErrors.NewDriverError(string(OpScan), srvErrors.DriverErrorHardware, err)
	}
	back, err := f.copyImage(f.loaded.back, id+backSuffix)
	if err != nil {
		return models.SheetImages{}, srvErrors.NewDriverError(string(OpScan), srvErrors.DriverErrorHardware, err)
	}

	return models.SheetImages{FrontPath: front, BackPath: back}, nil
}

func (f *FileDriver) Eject(ctx context.Context, direction models.EjectDirection) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkReady(OpEject); err != nil {
		return err
	}
	if f.loaded == nil {
		return srvErrors.NewDriverError(string(OpEject), srvErrors.DriverErrorNoPaper, nil)
	}

	folder := acceptedFolder
	if direction == models.EjectFront {
		folder = returnedFolder
	}
	if err := f.movePair(f.loaded, folder); err != nil {
		return srvErrors.NewDriverError(string(OpEject), srvErrors.DriverErrorHardware, err)
	}
	f.loaded = nil
	return nil
}

func (f *FileDriver) Print(ctx context.Context, pdf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkReady(OpPrint); err != nil {
		return err
	}
	if f.loaded == nil {
		return srvErrors.NewDriverError(string(OpPrint), srvErrors.DriverErrorNoPaper, nil)
	}

	path := filepath.Join(f.inbox, printedFolder, f.loaded.name+".pdf")
	if err := afero.WriteFile(f.fs, path, pdf, 0o644); err != nil {
		return srvErrors.NewDriverError(string(OpPrint), srvErrors.DriverErrorHardware, err)
	}
	f.log.Debugw("ballot printed", "sheet", f.loaded.name, "path", path, "size", len(pdf))
	return nil
}

func (f *FileDriver) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

// checkReady must be called with f.mu held.
func (f *FileDriver) checkReady(op Op) error {
	if !f.connected {
		return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorDisconnected, nil)
	}
	if f.markerExists(jamMarker) {
		return srvErrors.NewDriverError(string(op), srvErrors.DriverErrorJammed, nil)
	}
	return nil
}

func (f *FileDriver) markerExists(name string) bool {
	ok, err := afero.Exists(f.fs, filepath.Join(f.inbox, name))
	return err == nil && ok
}

// nextPair returns the first complete front/back pair in the inbox, by name.
func (f *FileDriver) nextPair() (*filePair, error) {
	entries, err := afero.ReadDir(f.fs, f.inbox)
	if err != nil {
		return nil, err
	}

	fronts := make(map[string]string)
	backs := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ext)
		switch {
		case strings.HasSuffix(base, frontSuffix):
			fronts[strings.TrimSuffix(base, frontSuffix)] = e.Name()
		case strings.HasSuffix(base, backSuffix):
			backs[strings.TrimSuffix(base, backSuffix)] = e.Name()
		}
	}

	names := make([]string, 0, len(fronts))
	for name := range fronts {
		if _, ok := backs[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	name := names[0]
	return &filePair{
		name:  name,
		front: filepath.Join(f.inbox, fronts[name]),
		back:  filepath.Join(f.inbox, backs[name]),
	}, nil
}

func (f *FileDriver) copyImage(src, name string) (string, error) {
	dst := filepath.Join(f.imagesDir, name+filepath.Ext(src))
	if err := copyFile(f.fs, src, dst); err != nil {
		return "", err
	}

	sidecar := sidecarPath(src)
	if ok, _ := afero.Exists(f.fs, sidecar); ok {
		if err := copyFile(f.fs, sidecar, sidecarPath(dst)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func (f *FileDriver) movePair(pair *filePair, folder string) error {
	for _, src := range []string{pair.front, pair.back, sidecarPath(pair.front), sidecarPath(pair.back)} {
		ok, err := afero.Exists(f.fs, src)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		dst := filepath.Join(f.inbox, folder, filepath.Base(src))
		if err := f.fs.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", src, err)
		}
	}
	return nil
}

// sidecarPath returns the interpretation file next to an image: "x-front.png" -> "x-front.yaml".
func sidecarPath(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".yaml"
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
