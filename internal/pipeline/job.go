package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Train ids name output folders and store keys, so they may not contain
// path separators or start with a dot.
var trainIdPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Job is one video to analyse.
type Job struct {
	Path    string
	TrainId string
}

// NewJob builds the job for path. An empty trainId defaults to the file
// name without extension.
func NewJob(path, trainId string) Job {
	if trainId == "" {
		base := filepath.Base(path)
		trainId = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Job{Path: path, TrainId: trainId}
}

func ValidTrainId(id string) bool {
	return trainIdPattern.MatchString(id)
}

func (j Job) Validate() error {
	if j.Path == "" {
		return errors.New("missing path")
	}
	if !IsVideoFile(j.Path) {
		return fmt.Errorf("unsupported video file %s", j.Path)
	}
	if !ValidTrainId(j.TrainId) {
		return fmt.Errorf("invalid train id %q", j.TrainId)
	}
	return nil
}
