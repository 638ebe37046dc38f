package interpreter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

// SidecarInterpreter reads the interpretation of each image from a YAML file
// stored next to it ("x-front.png" -> "x-front.yaml"):
//
//	type: ballot
//	ballotId: precinct-1-style-2
//	overvotes: [mayor]
//
// A side without a sidecar is unreadable.
type SidecarInterpreter struct {
	fs afero.Fs
}

func NewSidecarInterpreter(fs afero.Fs) *SidecarInterpreter {
	return &SidecarInterpreter{fs: fs}
}

func (s *SidecarInterpreter) Interpret(ctx context.Context, images models.SheetImages) (models.InterpretationResult, error) {
	front, err := s.interpretPage(images.FrontPath)
	if err != nil {
		return models.InterpretationResult{}, err
	}
	back, err := s.interpretPage(images.BackPath)
	if err != nil {
		return models.InterpretationResult{}, err
	}

	zap.S().Named("sidecar_interpreter").Debugw("sheet interpreted", "front", front.Type, "back", back.Type)

	return models.InterpretationResult{Front: front, Back: back}, nil
}

func (s *SidecarInterpreter) interpretPage(image string) (models.PageInterpretation, error) {
	path := strings.TrimSuffix(image, filepath.Ext(image)) + ".yaml"

	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return models.PageInterpretation{}, srvErrors.NewInterpretationError("failed to stat %s: %v", path, err)
	}
	if !ok {
		return models.PageInterpretation{Type: models.PageTypeUnreadable, Reason: "no interpretation data"}, nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.PageInterpretation{}, srvErrors.NewInterpretationError("failed to read %s: %v", path, err)
	}

	var page models.PageInterpretation
	if err := yaml.Unmarshal(data, &page); err != nil {
		return models.PageInterpretation{}, srvErrors.NewInterpretationError("invalid sidecar %s: %v", path, err)
	}

	switch page.Type {
	case models.PageTypeBallot, models.PageTypeBlank, models.PageTypeWrongElection, models.PageTypeUnreadable:
	default:
		return models.PageInterpretation{Type: models.PageTypeUnreadable, Reason: "unknown page type " + string(page.Type)}, nil
	}

	return page, nil
}
