package record

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"github.com/vhive-serverless/torchscale/pkg/common"

	log "github.com/sirupsen/logrus"
)

// Store keeps the normalized trial records of one experiment together with the errors
// hit while loading them.
type Store struct {
	records  []common.RunRecord
	profiles []ProfileSummary
	errors   []error
}

func NewStore() *Store {
	return &Store{
		records:  []common.RunRecord{},
		profiles: []ProfileSummary{},
		errors:   []error{},
	}
}

func (s *Store) Add(records ...common.RunRecord) {
	s.records = append(s.records, records...)
}

func (s *Store) ReportError(errs ...error) {
	for _, err := range errs {
		log.Warn(err)
		s.errors = append(s.errors, err)
	}
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) Errors() []error {
	return append([]error(nil), s.errors...)
}

// Records returns all records ordered by model, batch size and device count.
func (s *Store) Records() []common.RunRecord {
	records := append([]common.RunRecord(nil), s.records...)
	common.SortRunRecords(records)
	return records
}

// GroupBy returns the records of one (model, batch size) pair in ascending device count.
func (s *Store) GroupBy(model string, batchSize int) []common.RunRecord {
	group := lo.Filter(s.records, func(r common.RunRecord, _ int) bool {
		return r.Model == model && r.BatchSize == batchSize
	})
	common.SortRunRecords(group)
	return group
}

func (s *Store) Groups() map[common.GroupKey][]common.RunRecord {
	groups := lo.GroupBy(s.records, func(r common.RunRecord) common.GroupKey {
		return r.Key()
	})
	for _, group := range groups {
		common.SortRunRecords(group)
	}
	return groups
}

func (s *Store) GroupKeys() []common.GroupKey {
	keys := lo.Uniq(lo.Map(s.records, func(r common.RunRecord, _ int) common.GroupKey {
		return r.Key()
	}))
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// Profiles returns the profile summaries attached to the store, in load order.
func (s *Store) Profiles() []ProfileSummary {
	return append([]ProfileSummary(nil), s.profiles...)
}

// AttachProfiles keeps profiles and fills in the sync-wait fraction of records that lack one
// from the profile taken at the same device count. A profile only names a GPU count, so it
// applies to every model and batch size run at that count. Returns the number of updated records.
func (s *Store) AttachProfiles(profiles []ProfileSummary) int {
	s.profiles = append(s.profiles, profiles...)

	fractions := make(map[int]float64)
	for _, profile := range profiles {
		if _, ok := fractions[profile.GPUCount]; ok {
			log.Warnf("Several profiles for %d GPUs, using the last one", profile.GPUCount)
		}
		fractions[profile.GPUCount] = profile.SyncWaitFraction()
	}

	attached := 0
	for i, r := range s.records {
		fraction, ok := fractions[r.DeviceCount]
		if !ok || r.HasSyncWaitFraction() {
			continue
		}

		updated, err := r.WithSyncWaitFraction(fraction)
		if err != nil {
			s.ReportError(&common.ParseError{Source: r.String(), Err: err})
			continue
		}
		s.records[i] = updated
		attached++
	}

	log.Debugf("Attached profiled sync-wait fractions to %d records", attached)
	return attached
}

// LoadDirectory reads every benchmark result, CSV record file and profile summary in dir.
// Unreadable or malformed files are recorded in the store's errors; only a missing
// directory fails the call.
func LoadDirectory(dir string) (*Store, error) {
	if _, err := os.ReadDir(dir); err != nil {
		return nil, err
	}

	store := NewStore()

	for _, path := range glob(dir, common.BenchmarkResultsGlob) {
		raw, err := os.ReadFile(path)
		if err != nil {
			store.ReportError(&common.ParseError{Source: path, Err: err})
			continue
		}

		records, errs := IngestAll(path, raw)
		store.Add(records...)
		store.ReportError(errs...)
		log.Debugf("Read %d records from %s", len(records), path)
	}

	for _, path := range glob(dir, common.RecordCSVGlob) {
		if common.IsReportArtifact(filepath.Base(path)) {
			log.Debugf("Skipping report artifact %s", path)
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			store.ReportError(&common.ParseError{Source: path, Err: err})
			continue
		}

		records, errs := IngestCSV(path, f)
		f.Close()
		store.Add(records...)
		store.ReportError(errs...)
		log.Debugf("Read %d records from %s", len(records), path)
	}

	var profiles []ProfileSummary
	for _, path := range glob(dir, common.ProfileResultsGlob) {
		raw, err := os.ReadFile(path)
		if err != nil {
			store.ReportError(&common.ParseError{Source: path, Err: err})
			continue
		}

		profile, err := ParseProfile(raw)
		if err != nil {
			store.ReportError(&common.ParseError{Source: path, Err: errors.Unwrap(err)})
			continue
		}
		profiles = append(profiles, profile)
	}
	store.AttachProfiles(profiles)

	log.Infof("Loaded %d run records and %d profiles from %s (%d errors)",
		store.Len(), len(profiles), dir, len(store.errors))
	return store, nil
}

func glob(dir, pattern string) []string {
	//* Glob only fails on a malformed pattern, and ours are constants.
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	return matches
}
