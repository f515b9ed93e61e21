package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var videoExts = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

// Discover expands inputs into jobs. Directories contribute their video
// files (not recursively) in name order; files are taken as given. The
// train id is the file name without extension and must be unique across
// the inputs.
func Discover(inputs []string) ([]Job, error) {
	var jobs []Job
	seen := make(map[string]bool)
	owners := make(map[string]string)
	add := func(path string) error {
		if seen[path] {
			return nil
		}
		seen[path] = true
		job := NewJob(path, "")
		if !ValidTrainId(job.TrainId) {
			return fmt.Errorf("%s: invalid train id %q, rename the file", path, job.TrainId)
		}
		if other, ok := owners[job.TrainId]; ok {
			return fmt.Errorf("train id %s is used by both %s and %s", job.TrainId, other, path)
		}
		owners[job.TrainId] = path
		jobs = append(jobs, job)
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(input); err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && IsVideoFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if err := add(filepath.Join(input, name)); err != nil {
				return nil, err
			}
		}
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("no video files found in %v", inputs)
	}
	return jobs, nil
}

func IsVideoFile(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}
