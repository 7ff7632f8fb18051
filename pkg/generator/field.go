// Package generator produces synthetic column values for a model, in
// sequential batches with per-field parallelism inside each batch.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/google/uuid"
)

// Default option values.
const (
	DefaultMin   = 0
	DefaultMax   = 100
	DefaultWords = 2
)

var (
	defaultMinTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultMaxTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

// producer returns one value per call, drawing from rng.
type producer func(rng *rand.Rand) any

// variant is the generation rule of one semantic type. compile validates
// the field's options and binds them into a producer.
type variant struct {
	compile func(f model.FieldSpec) (producer, error)
}

// variants is indexed by semantic type; every member of the enum has an entry.
var variants = [model.NumSemanticTypes]variant{
	model.TypeUnsupported: {compile: compileEmpty},
	model.TypeIdentifier:  {compile: compileIdentifier},
	model.TypePersonName:  {compile: compilePersonName},
	model.TypeEmail:       {compile: compileEmail},
	model.TypeInteger:     {compile: compileInteger},
	model.TypeFloat:       {compile: compileFloat},
	model.TypeString:      {compile: compileString},
	model.TypeBoolean:     {compile: compileBoolean},
	model.TypeDate:        {compile: compileDate},
	model.TypeDatetime:    {compile: compileDatetime},
	model.TypeCategory:    {compile: compileCategory},
}

// FieldGenerator produces values for fields from a single random stream.
// It is not safe for concurrent use; give each goroutine its own.
type FieldGenerator struct {
	rng *rand.Rand
}

// NewFieldGenerator creates a generator drawing from rng.
func NewFieldGenerator(rng *rand.Rand) *FieldGenerator {
	return &FieldGenerator{rng: rng}
}

// NewSeededFieldGenerator creates a generator with a deterministic stream.
func NewSeededFieldGenerator(seed int64) *FieldGenerator {
	return NewFieldGenerator(rand.New(rand.NewSource(seed)))
}

// Generate returns count values for the field. A zero count always succeeds.
func (g *FieldGenerator) Generate(field model.FieldSpec, count int) ([]any, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidRequest, count)
	}
	if count == 0 {
		return []any{}, nil
	}

	next, err := compile(field)
	if err != nil {
		return nil, err
	}

	values := make([]any, count)
	for i := range values {
		values[i] = next(g.rng)
	}
	return values, nil
}

// Validate checks the field's options without generating anything.
func Validate(field model.FieldSpec) error {
	_, err := compile(field)
	return err
}

func compile(field model.FieldSpec) (producer, error) {
	t := field.Type
	if t < 0 || t >= model.NumSemanticTypes {
		t = model.TypeUnsupported
	}
	return variants[t].compile(field)
}

func invalid(f model.FieldSpec, option, format string, a ...any) error {
	return &ConstraintError{Field: f.Name, Option: option, Reason: fmt.Sprintf(format, a...)}
}

// compileEmpty renders unsupported types as empty strings.
func compileEmpty(model.FieldSpec) (producer, error) {
	return func(*rand.Rand) any { return "" }, nil
}

func compileIdentifier(model.FieldSpec) (producer, error) {
	return func(rng *rand.Rand) any {
		// rand.Rand.Read never fails.
		return uuid.Must(uuid.NewRandomFromReader(rng)).String()
	}, nil
}

func localeOf(f model.FieldSpec) (nameSource, error) {
	name, err := f.Constraints.String("locale", "en")
	if err != nil {
		return nameSource{}, invalid(f, "locale", "%v", err)
	}
	src, ok := locales[strings.ToLower(name)]
	if !ok {
		return nameSource{}, invalid(f, "locale", "unknown locale %q", name)
	}
	return src, nil
}

func compilePersonName(f model.FieldSpec) (producer, error) {
	src, err := localeOf(f)
	if err != nil {
		return nil, err
	}
	return func(rng *rand.Rand) any {
		return src.first[rng.Intn(len(src.first))] + " " + src.last[rng.Intn(len(src.last))]
	}, nil
}

func compileEmail(f model.FieldSpec) (producer, error) {
	src, err := localeOf(f)
	if err != nil {
		return nil, err
	}
	first, last := src.firstLatin, src.lastLatin
	if first == nil {
		first = src.first
	}
	if last == nil {
		last = src.last
	}
	return func(rng *rand.Rand) any {
		local := strings.ToLower(first[rng.Intn(len(first))] + "." + last[rng.Intn(len(last))])
		return fmt.Sprintf("%s%d@%s", local, rng.Intn(1000), src.domains[rng.Intn(len(src.domains))])
	}, nil
}

func compileInteger(f model.FieldSpec) (producer, error) {
	lo, err := f.Constraints.Int("min", DefaultMin)
	if err != nil {
		return nil, invalid(f, "min", "%v", err)
	}
	hi, err := f.Constraints.Int("max", DefaultMax)
	if err != nil {
		return nil, invalid(f, "max", "%v", err)
	}
	if hi < lo {
		return nil, invalid(f, "max", "max (%d) must be >= min (%d)", hi, lo)
	}
	if hi == lo {
		return func(*rand.Rand) any { return lo }, nil
	}
	span := hi - lo
	if span <= 0 {
		return nil, invalid(f, "", "range [%d, %d) overflows int64", lo, hi)
	}
	return func(rng *rand.Rand) any { return lo + rng.Int63n(span) }, nil
}

func compileFloat(f model.FieldSpec) (producer, error) {
	lo, err := f.Constraints.Float("min", DefaultMin)
	if err != nil {
		return nil, invalid(f, "min", "%v", err)
	}
	hi, err := f.Constraints.Float("max", DefaultMax)
	if err != nil {
		return nil, invalid(f, "max", "%v", err)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, invalid(f, "", "bounds must be finite")
	}
	if hi < lo {
		return nil, invalid(f, "max", "max (%g) must be >= min (%g)", hi, lo)
	}
	if hi == lo {
		return func(*rand.Rand) any { return lo }, nil
	}
	return func(rng *rand.Rand) any {
		return round2(lo+rng.Float64()*(hi-lo), lo, hi)
	}, nil
}

// round2 rounds v to two decimals while keeping it inside [lo, hi).
func round2(v, lo, hi float64) float64 {
	r := math.Round(v*100) / 100
	if r >= hi {
		r = math.Floor(v*100) / 100
	}
	if r < lo {
		r = math.Ceil(v*100) / 100
		if r >= hi {
			r = v
		}
	}
	return r
}

func compileString(f model.FieldSpec) (producer, error) {
	n, err := f.Constraints.Int("words", DefaultWords)
	if err != nil {
		return nil, invalid(f, "words", "%v", err)
	}
	if n < 1 {
		return nil, invalid(f, "words", "must be at least 1, got %d", n)
	}
	return func(rng *rand.Rand) any {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}, nil
}

func compileBoolean(f model.FieldSpec) (producer, error) {
	p, err := f.Constraints.Float("probability", 0.5)
	if err != nil {
		return nil, invalid(f, "probability", "%v", err)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, invalid(f, "probability", "must be within [0, 1], got %g", p)
	}
	return func(rng *rand.Rand) any { return rng.Float64() < p }, nil
}

func timeBounds(f model.FieldSpec) (time.Time, time.Time, error) {
	lo, err := f.Constraints.Time("min", defaultMinTime)
	if err != nil {
		return time.Time{}, time.Time{}, invalid(f, "min", "%v", err)
	}
	hi, err := f.Constraints.Time("max", defaultMaxTime)
	if err != nil {
		return time.Time{}, time.Time{}, invalid(f, "max", "%v", err)
	}
	if hi.Before(lo) {
		return time.Time{}, time.Time{}, invalid(f, "max", "max (%s) must not be before min (%s)",
			hi.Format(time.RFC3339), lo.Format(time.RFC3339))
	}
	return lo, hi, nil
}

func compileDate(f model.FieldSpec) (producer, error) {
	lo, hi, err := timeBounds(f)
	if err != nil {
		return nil, err
	}
	lo = lo.Truncate(24 * time.Hour)
	days := int(hi.Sub(lo) / (24 * time.Hour))
	if days <= 0 {
		return func(*rand.Rand) any { return lo }, nil
	}
	return func(rng *rand.Rand) any { return lo.AddDate(0, 0, rng.Intn(days)) }, nil
}

func compileDatetime(f model.FieldSpec) (producer, error) {
	lo, hi, err := timeBounds(f)
	if err != nil {
		return nil, err
	}
	lo = lo.Truncate(time.Second)
	secs := hi.Unix() - lo.Unix()
	if secs <= 0 {
		return func(*rand.Rand) any { return lo }, nil
	}
	return func(rng *rand.Rand) any {
		return lo.Add(time.Duration(rng.Int63n(secs)) * time.Second)
	}, nil
}

func compileCategory(f model.FieldSpec) (producer, error) {
	values, err := f.Constraints.Strings("values")
	if err != nil {
		return nil, invalid(f, "values", "%v", err)
	}
	if len(values) == 0 {
		return nil, invalid(f, "values", "category fields need at least one value")
	}
	values = append([]string(nil), values...)
	return func(rng *rand.Rand) any { return values[rng.Intn(len(values))] }, nil
}
