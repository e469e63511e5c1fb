package mzsearch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/524D/mzsearch/internal/decoy"
	"github.com/524D/mzsearch/internal/digest"
	"github.com/524D/mzsearch/internal/peptide"
)

// Defaults
const (
	DefaultReportPSMs            = 1
	DefaultPrecursorTolerancePPM = 20.0
	DefaultFragmentTolerancePPM  = 10.0
	DefaultAnnotateTolerancePPM  = 10.0
	DefaultAnnotateCharge        = 1
	DefaultMinIsotopeError       = -1
	DefaultMaxIsotopeError       = 3
	DefaultMinCharge             = 2
	DefaultMaxCharge             = 4
	DefaultMinFragmentMz         = 150.0
	DefaultMaxFragmentMz         = 2000.0
	DefaultMaxFragmentCharge     = 0 // up to the precursor charge
	DefaultMinMatchedPeaks       = 1
	DefaultMaxVariableMods       = peptide.DefaultMaxVariableMods
	DefaultDecoyTag              = decoy.DefaultTag
)

// SearchParameters control candidate retrieval and scoring
type SearchParameters struct {
	PrecursorTolerancePPM float64 `json:"precursor_tolerance_ppm"`
	FragmentTolerancePPM  float64 `json:"fragment_tolerance_ppm"`
	// Isotope errors tried for every precursor, in units of 13C-12C
	MinIsotopeError int `json:"min_isotope_error"`
	MaxIsotopeError int `json:"max_isotope_error"`
	// Charges tried when a precursor has no charge
	MinCharge         int     `json:"min_charge"`
	MaxCharge         int     `json:"max_charge"`
	MinFragmentMz     float64 `json:"min_fragment_mz"`
	MaxFragmentMz     float64 `json:"max_fragment_mz"`
	MaxFragmentCharge int     `json:"max_fragment_charge"`
	MinMatchedPeaks   int     `json:"min_matched_peaks"`
}

// DefaultSearchParameters returns the default search settings
func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		PrecursorTolerancePPM: DefaultPrecursorTolerancePPM,
		FragmentTolerancePPM:  DefaultFragmentTolerancePPM,
		MinIsotopeError:       DefaultMinIsotopeError,
		MaxIsotopeError:       DefaultMaxIsotopeError,
		MinCharge:             DefaultMinCharge,
		MaxCharge:             DefaultMaxCharge,
		MinFragmentMz:         DefaultMinFragmentMz,
		MaxFragmentMz:         DefaultMaxFragmentMz,
		MaxFragmentCharge:     DefaultMaxFragmentCharge,
		MinMatchedPeaks:       DefaultMinMatchedPeaks,
	}
}

// Validate checks the search settings
func (p SearchParameters) Validate() error {
	switch {
	case p.PrecursorTolerancePPM < 0:
		return &ConfigError{Field: "precursor_tolerance_ppm", Message: "must not be negative"}
	case p.FragmentTolerancePPM < 0:
		return &ConfigError{Field: "fragment_tolerance_ppm", Message: "must not be negative"}
	case p.MinIsotopeError > p.MaxIsotopeError:
		return &ConfigError{Field: "isotope_error",
			Message: fmt.Sprintf("minimum %d > maximum %d", p.MinIsotopeError, p.MaxIsotopeError)}
	case p.MinCharge < 1 || p.MinCharge > p.MaxCharge:
		return &ConfigError{Field: "charge",
			Message: fmt.Sprintf("invalid range %d:%d", p.MinCharge, p.MaxCharge)}
	case p.MaxFragmentMz > 0 && p.MinFragmentMz > p.MaxFragmentMz:
		return &ConfigError{Field: "fragment_mz",
			Message: fmt.Sprintf("minimum %g > maximum %g", p.MinFragmentMz, p.MaxFragmentMz)}
	case p.MaxFragmentCharge < 0:
		return &ConfigError{Field: "max_fragment_charge", Message: "must not be negative"}
	case p.MinMatchedPeaks < 0:
		return &ConfigError{Field: "min_matched_peaks", Message: "must not be negative"}
	}
	return nil
}

// DigestParameters control the in silico digestion
type DigestParameters struct {
	Enzyme          string `json:"enzyme"`
	MinLen          int    `json:"min_len"`
	MaxLen          int    `json:"max_len"`
	MissedCleavages int    `json:"missed_cleavages"`
	// Mode is "specific", "semi" or "nonspecific"
	Mode string `json:"mode"`
}

// DefaultDigestParameters returns a fully tryptic digestion
func DefaultDigestParameters() DigestParameters {
	return DigestParameters{
		Enzyme:          digest.Trypsin.Name,
		MinLen:          digest.DefaultMinLen,
		MaxLen:          digest.DefaultMaxLen,
		MissedCleavages: digest.DefaultMissedCleavages,
		Mode:            digest.Specific.String(),
	}
}

func (p DigestParameters) resolve() (digest.Parameters, error) {
	enzyme, err := digest.EnzymeByName(p.Enzyme)
	if err != nil {
		return digest.Parameters{}, configError("enzyme", err)
	}
	dp := digest.Parameters{
		Enzyme:          enzyme,
		MinLen:          p.MinLen,
		MaxLen:          p.MaxLen,
		MissedCleavages: p.MissedCleavages,
	}
	switch p.Mode {
	case digest.Specific.String(), "":
		dp.Mode = digest.Specific
	case digest.SemiSpecific.String():
		dp.Mode = digest.SemiSpecific
	case digest.NonSpecific.String():
		dp.Mode = digest.NonSpecific
	default:
		return digest.Parameters{}, &ConfigError{Field: "mode", Message: fmt.Sprintf("unknown digestion mode %q", p.Mode)}
	}
	if err := dp.Validate(); err != nil {
		return digest.Parameters{}, configError("digest", err)
	}
	return dp, nil
}

// DecoyMethod selects how decoy peptides are derived from targets
type DecoyMethod int

const (
	// DecoyReverse reverses every residue except the C-terminal one
	DecoyReverse DecoyMethod = DecoyMethod(decoy.Reverse)
	// DecoyShuffle shuffles every residue except the C-terminal one
	DecoyShuffle DecoyMethod = DecoyMethod(decoy.Shuffle)
)

// CollisionPolicy decides the fate of decoys that equal a target sequence
type CollisionPolicy int

const (
	DropCollisions CollisionPolicy = CollisionPolicy(decoy.Drop)
	KeepCollisions CollisionPolicy = CollisionPolicy(decoy.Keep)
)

type config struct {
	decoyTag        string
	generateDecoys  bool
	decoyMethod     DecoyMethod
	decoySeed       uint64
	collision       CollisionPolicy
	staticMods      map[rune]float64
	variableMods    map[rune]float64
	digest          DigestParameters
	maxVariableMods int
	workers         int
	search          SearchParameters
	logger          *slog.Logger
}

func defaultConfig() config {
	return config{
		decoyTag:        DefaultDecoyTag,
		generateDecoys:  true,
		decoyMethod:     DecoyReverse,
		collision:       DropCollisions,
		digest:          DefaultDigestParameters(),
		maxVariableMods: DefaultMaxVariableMods,
		search:          DefaultSearchParameters(),
		logger:          slog.Default().With("component", "mzsearch"),
	}
}

// Option configures a Database
type Option func(*config) error

// WithDecoyTag sets the prefix of decoy protein accessions.
// Default is "rev_".
func WithDecoyTag(tag string) Option {
	return func(c *config) error {
		c.decoyTag = tag
		return nil
	}
}

// WithGenerateDecoys enables or disables decoy generation.
// Default is true.
func WithGenerateDecoys(generate bool) Option {
	return func(c *config) error {
		c.generateDecoys = generate
		return nil
	}
}

// WithDecoyPolicy sets how decoys are generated and what happens to decoys
// that collide with a target sequence. seed is only used by DecoyShuffle.
func WithDecoyPolicy(method DecoyMethod, collision CollisionPolicy, seed uint64) Option {
	return func(c *config) error {
		c.decoyMethod = method
		c.collision = collision
		c.decoySeed = seed
		return nil
	}
}

// WithStaticMods sets modifications applied to every occurrence of a
// residue. Keys are residues, '^' for the N-terminus or '$' for the
// C-terminus. Default is none.
func WithStaticMods(mods map[rune]float64) Option {
	return func(c *config) error {
		c.staticMods = mods
		return nil
	}
}

// WithVariableMods sets modifications that may or may not be present.
// Keys are as for WithStaticMods.
func WithVariableMods(mods map[rune]float64) Option {
	return func(c *config) error {
		c.variableMods = mods
		return nil
	}
}

// WithMaxVariableMods caps the number of variable modifications per peptide
func WithMaxVariableMods(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &ConfigError{Field: "max_variable_mods", Message: "must not be negative"}
		}
		c.maxVariableMods = n
		return nil
	}
}

// WithDigest sets the digestion parameters
func WithDigest(p DigestParameters) Option {
	return func(c *config) error {
		c.digest = p
		return nil
	}
}

// WithSearchParameters sets the search parameters
func WithSearchParameters(p SearchParameters) Option {
	return func(c *config) error {
		if err := p.Validate(); err != nil {
			return err
		}
		c.search = p
		return nil
	}
}

// WithWorkers sets the number of goroutines used to build the index.
// Default (0) is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

func (c *config) decoyGenerator() (decoy.Generator, error) {
	g := decoy.Generator{
		Tag:       c.decoyTag,
		Method:    decoy.Method(c.decoyMethod),
		Seed:      c.decoySeed,
		Collision: decoy.CollisionPolicy(c.collision),
	}
	if !c.generateDecoys {
		return g, nil
	}
	if err := g.Validate(); err != nil {
		field := "decoy"
		if errors.Is(err, decoy.ErrInvalidGenerator) && c.decoyTag == "" {
			field = "decoy_tag"
		}
		return g, configError(field, err)
	}
	return g, nil
}

// Parameters is the resolved configuration of a Database
type Parameters struct {
	DecoyTag        string             `json:"decoy_tag"`
	GenerateDecoys  bool               `json:"generate_decoys"`
	StaticMods      map[string]float64 `json:"static_mods"`
	VariableMods    map[string]float64 `json:"variable_mods"`
	MaxVariableMods int                `json:"max_variable_mods"`
	Digest          DigestParameters   `json:"digest"`
	Search          SearchParameters   `json:"search"`
}

func modsByString(mods map[rune]float64) map[string]float64 {
	m := make(map[string]float64, len(mods))
	for k, v := range mods {
		m[string(k)] = v
	}
	return m
}

func (c *config) parameters() Parameters {
	return Parameters{
		DecoyTag:        c.decoyTag,
		GenerateDecoys:  c.generateDecoys,
		StaticMods:      modsByString(c.staticMods),
		VariableMods:    modsByString(c.variableMods),
		MaxVariableMods: c.maxVariableMods,
		Digest:          c.digest,
		Search:          c.search,
	}
}
