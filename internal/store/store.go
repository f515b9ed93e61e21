// Package store keeps train reports in a badger database keyed by train id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"railscan/internal/model"
	"railscan/pkg/log"
)

const trainKeyPrefix = "train:"

var ErrNotFound = errors.New("not found")

type Options struct {
	// Dir is the badger directory. Empty keeps the store in memory.
	Dir string `yaml:"dir"`
}

type Store struct {
	db     *badger.DB
	logger *logrus.Entry
}

func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Dir).WithLoggingLevel(badger.ERROR)
	if opts.Dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		logger: log.NewLogger().WithField("component", "store"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func trainKey(trainId string) []byte {
	return []byte(trainKeyPrefix + trainId)
}

// Consume stores the report of t, replacing any earlier report of the
// same train.
func (s *Store) Consume(_ context.Context, t *model.TrainAnalysis) error {
	return s.PutTrain(model.NewTrainReport(t))
}

func (s *Store) PutTrain(report *model.TrainReport) error {
	val, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(trainKey(report.TrainId), val)
	})
}

func (s *Store) GetTrain(trainId string) (*model.TrainReport, error) {
	report := &model.TrainReport{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(trainKey(trainId))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, report)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Store) GetCoach(trainId string, coach int) (*model.CoachReport, error) {
	report, err := s.GetTrain(trainId)
	if err != nil {
		return nil, err
	}
	for i := range report.Coaches {
		if report.Coaches[i].Coach == coach {
			return &report.Coaches[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) DeleteTrain(trainId string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(trainKey(trainId))
	})
}

// ListTrains returns every stored report ordered by train id. Entries that
// fail to decode are logged and skipped.
func (s *Store) ListTrains() ([]*model.TrainReport, error) {
	var reports []*model.TrainReport
	prefix := []byte(trainKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			report := &model.TrainReport{}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, report)
			}); err != nil {
				s.logger.WithError(err).Errorf("decode %s failed", item.Key())
				continue
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].TrainId < reports[j].TrainId })
	return reports, nil
}
