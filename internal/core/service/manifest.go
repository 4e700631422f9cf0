package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/storage/artifact"
	"github.com/yndnr/imgcarve/pkg/carve"
)

func buildManifest(runID string, req *CarveRequest, buf []byte, res *carve.Result, report *artifact.Report, start time.Time) *domain.Manifest {
	m := &domain.Manifest{
		RunID:       runID,
		Input:       req.Input,
		OutputDir:   req.OutputDir,
		Mode:        res.Mode.String(),
		KeepRaw:     req.KeepRaw,
		InputSize:   len(buf),
		InputDigest: domain.Digest(buf),
		CreatedAt:   start.UTC().Format(time.RFC3339),
		Artifacts:   make([]domain.ArtifactRecord, 0, len(res.Segments)),
	}

	for _, a := range report.Artifacts {
		rec := domain.ArtifactRecord{
			Index:  a.Index,
			Name:   a.Name,
			Format: a.Segment.Format.String(),
			Start:  a.Segment.Start,
			End:    a.Segment.End,
			Size:   a.Segment.Len(),
			Digest: domain.Digest(a.Segment.Bytes()),
			Status: a.Status,
		}
		if a.Err != nil {
			rec.Code = domain.GetErrorCode(a.Err)
			rec.Error = a.Err.Error()
		}
		m.Artifacts = append(m.Artifacts, rec)
	}
	return m
}

// WriteManifest writes m to path, as JSON when path ends in .json and as
// YAML otherwise. The file is replaced atomically.
func WriteManifest(path string, m *domain.Manifest) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return domain.ErrManifestWrite.At(path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.ErrManifestWrite.At(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return domain.ErrManifestWrite.At(path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m domain.Manifest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
