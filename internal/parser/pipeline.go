package parser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/normalizer"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"github.com/kruegge82/adressCorrector/internal/similarity"
	"go.uber.org/zap"
)

// QualityFlag records a correction or problem found while processing a record.
type QualityFlag string

const (
	FlagAdditionExtracted QualityFlag = "ADDITION_EXTRACTED"
	FlagStreetNotFound    QualityFlag = "STREET_NOT_FOUND"
	FlagStreetRecovered   QualityFlag = "STREET_RECOVERED"
	FlagFieldRecovered    QualityFlag = "STREET_FROM_OTHER_FIELD"
	FlagNumberRecovered   QualityFlag = "NUMBER_FROM_ADDITION"
	FlagStreetRenamed     QualityFlag = "STREET_RENAMED"
	FlagStreetFuzzy       QualityFlag = "STREET_FUZZY_CORRECTED"
	FlagPostalMismatch    QualityFlag = "POSTAL_CITY_MISMATCH"
	FlagCityCorrected     QualityFlag = "CITY_CORRECTED"
	FlagDistrictResolved  QualityFlag = "DISTRICT_RESOLVED"
	FlagDistrictMissing   QualityFlag = "DISTRICT_NOT_FOUND"
	FlagLookupFailed      QualityFlag = "LOOKUP_FAILED"
)

// Pipeline corrects address records against reference data. It is safe for
// concurrent use when the resolver is.
type Pipeline struct {
	resolver  reference.Resolver
	extractor *AdditionExtractor
	cfg       config.CorrectorCfg
	logger    *zap.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(resolver reference.Resolver, cfg config.CorrectorCfg, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		resolver:  resolver,
		extractor: NewAdditionExtractor(cfg.VenueKeywords),
		cfg:       cfg,
		logger:    logger,
	}
}

// correction is the state of one record moving through the stages.
type correction struct {
	fields         models.AddressFields
	originalStreet string
	leadingPhrase  string
	confidence     float64
	gatePenalized  bool
	flags          []string
}

func (c *correction) flag(f QualityFlag) {
	for _, existing := range c.flags {
		if existing == string(f) {
			return
		}
	}
	c.flags = append(c.flags, string(f))
}

func (c *correction) penalize(delta float64, f QualityFlag) {
	c.confidence -= delta
	if c.confidence < 0 {
		c.confidence = 0
	}
	c.flag(f)
}

// Correct runs every stage on in and returns the corrected record. It never
// fails: reference lookup errors skip the affected stage.
func (p *Pipeline) Correct(ctx context.Context, in models.AddressFields) *models.CorrectionResult {
	start := time.Now()
	fields := in.Trimmed()
	c := &correction{
		fields:         fields,
		originalStreet: fields.Street,
		confidence:     1.0,
	}

	p.extractAdditions(c)
	p.normalize(c)
	p.checkStreet(ctx, c)
	p.splitHouseNumber(c)
	p.resolveStreetName(ctx, c)
	p.validatePostalCode(ctx, c)
	p.resolveDistrict(ctx, c)

	result := &models.CorrectionResult{
		AddressFields:   c.fields,
		ConfidenceScore: c.confidence,
		Flags:           c.flags,
		Status:          p.cfg.Status(c.confidence),
	}
	p.logger.Debug("address corrected",
		zap.String("street", result.Street),
		zap.String("postal_code", result.PostalCode),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Strings("flags", result.Flags),
		zap.Duration("took", time.Since(start)))
	return result
}

func (p *Pipeline) lookupFailed(c *correction, op string, err error) {
	p.logger.Warn("reference lookup failed, stage skipped",
		zap.String("stage", op),
		zap.String("postal_code", c.fields.PostalCode),
		zap.Error(err))
	c.flag(FlagLookupFailed)
}

// 1. Move names, companies and venue text out of the street field.
func (p *Pipeline) extractAdditions(c *correction) {
	if !models.IsSet(c.fields.Street) {
		return
	}
	if phrase := p.extractor.ExtractLeading(&c.fields); phrase != "" {
		c.leadingPhrase = phrase
		c.flag(FlagAdditionExtracted)
	}
	if venue := p.extractor.ExtractVenue(&c.fields); venue != "" {
		c.flag(FlagAdditionExtracted)
	}
}

// 2. Canonical street suffixes and base city names.
func (p *Pipeline) normalize(c *correction) {
	c.fields.Street = normalizer.NormalizeStreetName(c.fields.Street)
	c.fields.City = normalizer.NormalizeCityName(c.fields.City)
}

// 3. Existence gate. A street unknown for the postal code costs confidence
// once and triggers recovery from the street itself or from other fields.
func (p *Pipeline) checkStreet(ctx context.Context, c *correction) {
	f := &c.fields
	if !models.IsSet(f.PostalCode) {
		return
	}
	if models.IsSet(f.Street) {
		exists, err := p.resolver.StreetExists(ctx, f.Street, f.PostalCode)
		if err != nil {
			p.lookupFailed(c, "street_exists", err)
			return
		}
		if exists {
			return
		}
	}

	c.penalize(p.cfg.Penalties.StreetNotFound, FlagStreetNotFound)
	c.gatePenalized = true

	streets, err := p.resolver.FindStreetsByPostalCode(ctx, f.PostalCode)
	if err != nil {
		p.lookupFailed(c, "find_streets", err)
		return
	}
	if len(streets) == 0 {
		return
	}
	if models.IsSet(f.Street) && p.recoverFromStreet(c, streets) {
		return
	}
	p.recoverFromFields(c, streets)
}

type streetInput struct {
	text         string
	fromOriginal bool
}

// recoverFromStreet matches the street (and its spelled-out variants) against
// the known streets. When words were moved to address_addition in stage 1 the
// untouched original is tried too, and a match on it takes them back.
func (p *Pipeline) recoverFromStreet(c *correction, streets []string) bool {
	f := &c.fields
	var inputs []streetInput
	for _, v := range normalizer.ExpandAbbreviations(f.Street) {
		inputs = append(inputs, streetInput{text: v})
	}
	if c.leadingPhrase != "" {
		for _, v := range normalizer.ExpandAbbreviations(normalizer.NormalizeStreetName(c.originalStreet)) {
			inputs = append(inputs, streetInput{text: v, fromOriginal: true})
		}
	}

	var (
		best       string
		bestNumber string
		bestInput  streetInput
		bestScore  = -1.0
	)
	for _, in := range inputs {
		name, number := SplitStreet(in.text)
		key := normalizer.StreetKey(name)
		for _, candidate := range streets {
			if s := similarity.Score(key, normalizer.StreetKey(candidate)); s > bestScore {
				best, bestNumber, bestInput, bestScore = candidate, number, in, s
			}
		}
	}
	if bestScore < p.cfg.RecoveryThreshold {
		return false
	}

	previous := f.Street
	f.Street = normalizer.NormalizeStreetName(best)
	if bestNumber != "" {
		switch {
		case !models.IsSet(f.StreetNumber):
			f.StreetNumber = bestNumber
		case !strings.EqualFold(f.StreetNumber, bestNumber):
			f.AppendAddition(bestNumber)
		}
	}
	if bestInput.fromOriginal {
		f.RemoveAddition(c.leadingPhrase)
	}
	c.flag(FlagStreetRecovered)
	p.logger.Debug("street recovered",
		zap.String("from", previous),
		zap.String("to", f.Street),
		zap.Float64("score", bestScore))
	return true
}

type fieldMatch struct {
	street string
	number string
	rest   string
}

// recoverFromFields looks for a known street inside company, then
// address_addition. The street found there and the old street value swap places.
func (p *Pipeline) recoverFromFields(c *correction, streets []string) bool {
	f := &c.fields
	sources := []struct {
		name  string
		value *string
	}{
		{"company", &f.Company},
		{"address_addition", &f.AddressAddition},
	}
	for _, src := range sources {
		if !models.IsSet(*src.value) {
			continue
		}
		m, ok := p.locateStreet(*src.value, streets)
		if !ok {
			continue
		}
		previous := f.Street
		f.Street = normalizer.NormalizeStreetName(m.street)
		*src.value = models.JoinFragment(m.rest, previous)
		if m.number != "" && !models.IsSet(f.StreetNumber) {
			f.StreetNumber = m.number
		}
		c.flag(FlagFieldRecovered)
		p.logger.Debug("street recovered from field",
			zap.String("field", src.name),
			zap.String("street", f.Street))
		return true
	}
	return false
}

func (p *Pipeline) locateStreet(text string, streets []string) (fieldMatch, bool) {
	if p.cfg.StrictFieldRecovery {
		name, number := SplitStreet(text)
		key := normalizer.StreetKey(name)
		for _, candidate := range streets {
			if normalizer.StreetKey(candidate) == key {
				return fieldMatch{street: candidate, number: number}, true
			}
		}
		return fieldMatch{}, false
	}

	haystack := " " + containmentKey(text) + " "
	best := ""
	for _, candidate := range streets {
		k := normalizer.StreetKey(candidate)
		if k == "" || !strings.Contains(haystack, " "+k+" ") {
			continue
		}
		if len(k) > len(normalizer.StreetKey(best)) {
			best = candidate
		}
	}
	if best == "" {
		return fieldMatch{}, false
	}

	loc := streetPattern(best).FindStringSubmatchIndex(text)
	if loc == nil {
		return fieldMatch{}, false
	}
	start, end := loc[2], loc[3]
	number, consumed := numberAfter(text, end)
	rest := cleanFragment(text[:start] + " " + text[end+consumed:])
	return fieldMatch{street: best, number: number, rest: rest}, true
}

var reKeySeparators = regexp.MustCompile(`[,;/()]+`)

func containmentKey(text string) string {
	k := normalizer.StreetKey(reKeySeparators.ReplaceAllString(text, " "))
	return strings.Join(strings.Fields(k), " ")
}

// streetPattern matches any spelling of street inside free text
// ("Bahnhofstraße", "Bahnhofstr.", "bahnhof-str").
func streetPattern(street string) *regexp.Regexp {
	words := strings.Fields(normalizer.StreetKey(street))
	parts := make([]string, len(words))
	for i, w := range words {
		switch {
		case strings.HasSuffix(w, "str."):
			parts[i] = regexp.QuoteMeta(strings.TrimSuffix(w, "str.")) + `str(?:a(?:ß|ss)e|\.)?`
		case strings.HasSuffix(w, "platz"):
			parts[i] = regexp.QuoteMeta(strings.TrimSuffix(w, "platz")) + `pl(?:atz|\.)`
		default:
			parts[i] = regexp.QuoteMeta(w)
		}
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(parts, `[\s-]+`) + `)(?:[^\p{L}]|$)`)
}

// 4. Separate the house number from the street. Without one, take the first
// number found in address_addition.
func (p *Pipeline) splitHouseNumber(c *correction) {
	f := &c.fields
	if models.IsSet(f.Street) {
		name, number := SplitStreet(f.Street)
		if number != "" {
			f.Street = name
			switch {
			case !models.IsSet(f.StreetNumber):
				f.StreetNumber = number
			case !strings.EqualFold(f.StreetNumber, number):
				f.AppendAddition(number)
			}
		}
	}
	if !models.IsSet(f.StreetNumber) && models.IsSet(f.AddressAddition) {
		if number, rest, ok := ExtractHouseNumber(f.AddressAddition); ok {
			f.StreetNumber = number
			f.AddressAddition = rest
			c.flag(FlagNumberRecovered)
		}
	}
}

// 5. Apply official renames, otherwise snap the street to the closest known name.
func (p *Pipeline) resolveStreetName(ctx context.Context, c *correction) {
	f := &c.fields
	if !models.IsSet(f.PostalCode) || !models.IsSet(f.Street) {
		return
	}
	records, err := p.resolver.GetStreetsWithDetails(ctx, f.PostalCode)
	if err != nil {
		p.lookupFailed(c, "streets_with_details", err)
		return
	}
	key := normalizer.StreetKey(f.Street)

	var renamed *models.StreetRecord
	for i := range records {
		r := &records[i]
		if r.OldName == nil || normalizer.StreetKey(*r.OldName) != key || normalizer.StreetKey(r.CurrentName) == key {
			continue
		}
		if renamed == nil || r.Version > renamed.Version {
			renamed = r
		}
	}
	if renamed != nil {
		if !models.IsSet(f.OriginalStreet) {
			f.OriginalStreet = c.originalStreet
			if f.OriginalStreet == "" {
				f.OriginalStreet = f.Street
			}
		}
		f.Street = normalizer.NormalizeStreetName(renamed.CurrentName)
		if c.gatePenalized {
			c.confidence += p.cfg.Penalties.RenameCompensation
		}
		c.flag(FlagStreetRenamed)
		p.logger.Info("street renamed",
			zap.String("old", *renamed.OldName),
			zap.String("new", renamed.CurrentName),
			zap.String("postal_code", f.PostalCode))
		return
	}

	candidates := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.CurrentName != "" && !seen[r.CurrentName] {
			seen[r.CurrentName] = true
			candidates = append(candidates, r.CurrentName)
		}
	}
	if len(candidates) == 0 {
		return
	}
	best, err := p.resolver.FindSimilarStreet(ctx, f.Street, candidates)
	if err != nil {
		p.lookupFailed(c, "find_similar_street", err)
		return
	}
	bestKey := normalizer.StreetKey(best)
	if bestKey == "" || bestKey == key {
		return
	}
	sim := similarity.Score(key, bestKey)
	f.Street = normalizer.NormalizeStreetName(best)
	c.penalize((1-sim)*p.cfg.Penalties.FuzzyFactor, FlagStreetFuzzy)
}

// 6. Postal code and city must belong together. A mismatch costs confidence;
// the city is replaced when a reference spelling validates.
func (p *Pipeline) validatePostalCode(ctx context.Context, c *correction) {
	f := &c.fields
	if !models.IsSet(f.PostalCode) || !models.IsSet(f.City) {
		return
	}
	ok, err := p.resolver.ValidatePostalCode(ctx, f.PostalCode, f.City)
	if err != nil {
		p.lookupFailed(c, "validate_postal_code", err)
		return
	}
	if ok {
		return
	}
	p.logger.Warn("postal code does not match city",
		zap.String("postal_code", f.PostalCode),
		zap.String("city", f.City))
	c.penalize(p.cfg.Penalties.PostalMismatch, FlagPostalMismatch)

	closest, err := p.resolver.FindClosestCity(ctx, f.City, f.PostalCode)
	if err != nil {
		p.lookupFailed(c, "find_closest_city", err)
		return
	}
	if closest == "" || normalizer.CityKey(closest) == normalizer.CityKey(f.City) {
		return
	}
	if valid, err := p.resolver.ValidatePostalCode(ctx, f.PostalCode, closest); err == nil && valid {
		f.City = closest
		c.flag(FlagCityCorrected)
	}
}

// 7. District lookup.
func (p *Pipeline) resolveDistrict(ctx context.Context, c *correction) {
	f := &c.fields
	if !models.IsSet(f.PostalCode) || !models.IsSet(f.City) {
		return
	}
	district, found, err := p.resolver.FindCityDistrict(ctx, f.City, f.PostalCode, f.Street)
	if err != nil {
		p.lookupFailed(c, "find_city_district", err)
		return
	}
	if !found {
		c.penalize(p.cfg.Penalties.DistrictMissing, FlagDistrictMissing)
		return
	}
	f.District = district
	c.flag(FlagDistrictResolved)
}
