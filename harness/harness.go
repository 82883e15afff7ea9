// Package harness supports end-to-end test runs against a live Argus
// service. It generates collision-free resource names from an explicit
// random source, tracks every dataset a run creates, and archives them all
// at teardown so repeated runs leave no residue.
package harness

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/argus-vision/argus-go/argtypes"
	"github.com/argus-vision/argus-go/errors"
)

// nameAlphabet is the character set for generated name suffixes.
const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// suffixLength is the length of the random portion of generated names.
const suffixLength = 10

// NameGenerator produces collision-free resource names for one run.
// The source is explicit so runs can be reproduced from a seed.
type NameGenerator struct {
	prefix string
	rng    *rand.Rand
}

// NewNameGenerator creates a generator whose names start with prefix,
// drawing randomness from src.
func NewNameGenerator(prefix string, src rand.Source) *NameGenerator {
	return &NameGenerator{
		prefix: prefix,
		rng:    rand.New(src),
	}
}

// Next returns a fresh name of the form <prefix>_<random suffix>.
func (g *NameGenerator) Next() string {
	var b strings.Builder
	b.WriteString(g.prefix)
	b.WriteByte('_')
	for range suffixLength {
		b.WriteByte(nameAlphabet[g.rng.Intn(len(nameAlphabet))])
	}
	return b.String()
}

// ItemRecord tracks one item pushed during a run.
type ItemRecord struct {
	// UploadID is the opaque upload identifier the service issued
	UploadID uuid.UUID

	// Name is the item name
	Name string

	// Path is the remote folder the item was registered under
	Path string

	// Status is the item's final observed status
	Status argtypes.UploadStatus
}

// DatasetRecord tracks one dataset created during a run.
type DatasetRecord struct {
	// ID is the service-assigned dataset identifier
	ID int64

	// Name is the generated dataset name
	Name string

	// Slug is the URL-safe dataset identifier
	Slug string

	// Items lists items pushed into the dataset during the run
	Items []ItemRecord
}

// RunInfo accumulates everything one end-to-end run creates remotely.
type RunInfo struct {
	// Prefix is the shared name prefix for the run's resources
	Prefix string

	names    *NameGenerator
	datasets []*DatasetRecord
}

// NewRun starts tracking a run. All generated names share the given prefix.
func NewRun(prefix string, src rand.Source) *RunInfo {
	return &RunInfo{
		Prefix: prefix,
		names:  NewNameGenerator(prefix, src),
	}
}

// NextName returns a fresh resource name for the run.
func (r *RunInfo) NextName() string {
	return r.names.Next()
}

// TrackDataset records a created dataset for later teardown and returns its
// record for item tracking.
func (r *RunInfo) TrackDataset(ds *argtypes.Dataset) *DatasetRecord {
	record := &DatasetRecord{
		ID:   ds.ID,
		Name: ds.Name,
		Slug: ds.Slug,
	}
	r.datasets = append(r.datasets, record)
	return record
}

// TrackItems appends push results to a dataset record.
func (d *DatasetRecord) TrackItems(results []argtypes.ItemResult) {
	for _, res := range results {
		d.Items = append(d.Items, ItemRecord{
			UploadID: res.UploadID,
			Name:     res.Name,
			Path:     res.Path,
			Status:   res.Status,
		})
	}
}

// Datasets returns the datasets tracked so far.
func (r *RunInfo) Datasets() []*DatasetRecord {
	return r.datasets
}

// DatasetArchiver archives datasets; the Argus client satisfies it.
type DatasetArchiver interface {
	ArchiveDataset(ctx context.Context, id int64) error
}

// Teardown archives every dataset the run created. Archival failures are
// collected rather than aborting, so one stuck dataset does not strand the
// rest; the returned error joins all failures and is nil when everything was
// archived.
func (r *RunInfo) Teardown(ctx context.Context, archiver DatasetArchiver) error {
	var failed []string
	for _, ds := range r.datasets {
		if err := archiver.ArchiveDataset(ctx, ds.ID); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%d): %v", ds.Name, ds.ID, err))
		}
	}
	if len(failed) > 0 {
		return errors.NewError("teardown", errors.ErrServerError).
			WithMessage("failed to archive datasets: " + strings.Join(failed, "; "))
	}
	return nil
}
