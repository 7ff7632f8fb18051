package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/TFMV/datagen/pkg/table"
	"github.com/zeebo/xxh3"
)

// Request describes one generation run.
type Request struct {
	// Model is the schema to generate. It is assumed to be valid.
	Model model.ModelSpec

	// RowCount is the number of rows to produce.
	RowCount int

	// BatchSize bounds how many rows are materialized per batch.
	BatchSize int

	// Seed makes the output reproducible. Nil means non-deterministic.
	Seed *int64

	// MaxWorkers bounds the number of fields generated concurrently.
	MaxWorkers int
}

// ProgressFunc receives the fraction of rows completed after each batch.
type ProgressFunc func(fraction float64)

// Validate checks the request parameters.
func (r Request) Validate() error {
	if r.RowCount < 0 {
		return fmt.Errorf("%w: row count must be non-negative, got %d", ErrInvalidRequest, r.RowCount)
	}
	if r.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidRequest, r.BatchSize)
	}
	if r.MaxWorkers <= 0 {
		return fmt.Errorf("%w: max workers must be positive, got %d", ErrInvalidRequest, r.MaxWorkers)
	}
	return nil
}

// Batches returns the row count of every batch for the given plan.
func Batches(rowCount, batchSize int) []int {
	if rowCount <= 0 || batchSize <= 0 {
		return nil
	}
	total := (rowCount + batchSize - 1) / batchSize
	sizes := make([]int, total)
	for b := range sizes {
		sizes[b] = min(batchSize, rowCount-b*batchSize)
	}
	return sizes
}

// GenerateData runs the request and returns the full table. Batches run
// one after another; the fields of a batch are generated concurrently on
// at most MaxWorkers goroutines. onProgress, when non-nil, is called after
// each batch with a strictly increasing fraction ending at exactly 1.0.
//
// With a seed, each field draws from its own stream derived from the seed
// and the field's position and name, so output does not depend on
// MaxWorkers or scheduling order.
//
// Any failure aborts the run and is returned as a *GenerationError; no
// table is returned. ctx is checked between batches.
func GenerateData(ctx context.Context, req Request, onProgress ProgressFunc) (*table.Table, error) {
	return generate(ctx, req, onProgress, false)
}

// GenerateDataPartial behaves like GenerateData but, on failure or
// cancellation, also returns the rows of every batch that completed.
func GenerateDataPartial(ctx context.Context, req Request, onProgress ProgressFunc) (*table.Table, error) {
	return generate(ctx, req, onProgress, true)
}

func generate(ctx context.Context, req Request, onProgress ProgressFunc, partial bool) (*table.Table, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fields := req.Model.Fields
	result := table.New(fields, req.RowCount)
	if req.RowCount == 0 {
		return result, nil
	}

	fail := func(err error) (*table.Table, error) {
		if partial {
			return result, err
		}
		return nil, err
	}

	for _, f := range fields {
		if err := Validate(f); err != nil {
			return fail(&GenerationError{Batch: -1, Field: f.Name, Err: err})
		}
	}

	gens := fieldStreams(req)
	pool := newWorkerPool(max(1, min(req.MaxWorkers, len(fields))))
	defer pool.close()

	out := make([][]any, len(fields))
	done := 0
	for b, size := range Batches(req.RowCount, req.BatchSize) {
		if err := ctx.Err(); err != nil {
			return fail(&GenerationError{Batch: b, Err: err})
		}

		jobs := make([]func(context.Context) error, len(fields))
		for i := range fields {
			jobs[i] = func(context.Context) error {
				values, err := gens[i].Generate(fields[i], size)
				if err != nil {
					return &GenerationError{Batch: b, Field: fields[i].Name, Err: err}
				}
				out[i] = values
				return nil
			}
		}

		if err := pool.run(ctx, jobs); err != nil {
			var ge *GenerationError
			if !errors.As(err, &ge) {
				err = &GenerationError{Batch: b, Err: err}
			}
			return fail(err)
		}

		for i := range fields {
			result.Append(i, out[i])
			out[i] = nil
		}
		done += size
		if onProgress != nil {
			onProgress(float64(done) / float64(req.RowCount))
		}
	}

	return result, nil
}

// fieldStreams creates one generator per field, each created once and
// used by one task at a time.
func fieldStreams(req Request) []*FieldGenerator {
	var master int64
	if req.Seed != nil {
		master = *req.Seed
	} else {
		master = time.Now().UnixNano()
	}
	gens := make([]*FieldGenerator, len(req.Model.Fields))
	for i, f := range req.Model.Fields {
		gens[i] = NewFieldGenerator(rand.New(rand.NewSource(StreamSeed(master, i, f.Name))))
	}
	return gens
}

// StreamSeed derives the seed of a field's random stream from the master seed.
func StreamSeed(master int64, index int, name string) int64 {
	return int64(xxh3.HashStringSeed(fmt.Sprintf("%d:%s", index, name), uint64(master)))
}
