package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MaxHistoryBits is the widest history or PC index a table may be built
// from. At 30 bits a counter table takes 1 GiB and the local history table
// takes 4 GiB, so a 30:30:30 tournament predictor allocates about 7 GiB.
const MaxHistoryBits = 30

// CustomBits is the fixed width of every history and index in the custom
// hybrid scheme.
const CustomBits = 15

// ErrInvalidConfig is returned when a Config cannot be used to build a
// predictor.
var ErrInvalidConfig = errors.New("invalid predictor config")

// Scheme selects the prediction algorithm.
type Scheme int

const (
	// Static always predicts taken.
	Static Scheme = iota
	// Gshare indexes a global counter table by GHR XOR PC.
	Gshare
	// Tournament chooses between a local and a global predictor.
	Tournament
	// Custom is a tournament predictor with a gshare global side.
	Custom
)

var schemeNames = [...]string{"Static", "Gshare", "Tournament", "Custom"}

func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
	return schemeNames[s]
}

// ParseScheme converts a case-insensitive scheme name into a Scheme.
func ParseScheme(name string) (Scheme, error) {
	for i, n := range schemeNames {
		if strings.EqualFold(n, name) {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scheme %q", ErrInvalidConfig, name)
}

// MarshalText encodes the scheme as its name.
func (s Scheme) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(schemeNames) {
		return nil, fmt.Errorf("%w: unknown scheme %d", ErrInvalidConfig, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a scheme name.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Config holds the scheme selector and the table widths of a predictor.
type Config struct {
	// Scheme is the prediction algorithm. Default: Static.
	Scheme Scheme `json:"scheme"`

	// GHistoryBits is the global history length. It also sizes the global
	// and choice tables. Default: 14.
	GHistoryBits int `json:"ghistory_bits"`

	// LHistoryBits is the local history length and sizes the pattern
	// table. Default: 10.
	LHistoryBits int `json:"lhistory_bits"`

	// PCIndexBits is the number of low PC bits indexing the local history
	// table. Default: 10.
	PCIndexBits int `json:"pc_index_bits"`
}

// DefaultConfig returns the default predictor configuration.
func DefaultConfig() Config {
	return Config{
		Scheme:       Static,
		GHistoryBits: 14,
		LHistoryBits: 10,
		PCIndexBits:  10,
	}
}

// Validate checks the scheme and that every width is within
// [0, MaxHistoryBits].
func (c Config) Validate() error {
	if c.Scheme < Static || c.Scheme > Custom {
		return fmt.Errorf("%w: unknown scheme %d", ErrInvalidConfig, int(c.Scheme))
	}

	widths := []struct {
		name string
		bits int
	}{
		{"ghistory_bits", c.GHistoryBits},
		{"lhistory_bits", c.LHistoryBits},
		{"pc_index_bits", c.PCIndexBits},
	}
	for _, w := range widths {
		if w.bits < 0 || w.bits > MaxHistoryBits {
			return fmt.Errorf("%w: %s must be in [0, %d], got %d",
				ErrInvalidConfig, w.name, MaxHistoryBits, w.bits)
		}
	}

	return nil
}

// Effective returns the widths the predictor actually builds. The custom
// scheme overrides all three widths with CustomBits.
func (c Config) Effective() Config {
	if c.Scheme == Custom {
		c.GHistoryBits = CustomBits
		c.LHistoryBits = CustomBits
		c.PCIndexBits = CustomBits
	}
	return c
}

func (c Config) String() string {
	switch c.Scheme {
	case Gshare:
		return fmt.Sprintf("Gshare:%d", c.GHistoryBits)
	case Tournament:
		return fmt.Sprintf("Tournament:%d:%d:%d",
			c.GHistoryBits, c.LHistoryBits, c.PCIndexBits)
	default:
		return c.Scheme.String()
	}
}

// ParseConfig parses a "<scheme>[:ghist[:lhist[:pcindex]]]" selector such
// as "gshare:13" or "tournament:9:10:10". Omitted widths keep their
// defaults.
func ParseConfig(selector string) (Config, error) {
	return ParseConfigOver(DefaultConfig(), selector)
}

// ParseConfigOver is ParseConfig with omitted widths taken from base.
func ParseConfigOver(base Config, selector string) (Config, error) {
	parts := strings.Split(strings.TrimSpace(selector), ":")
	if len(parts) > 4 {
		return Config{}, fmt.Errorf("%w: too many fields in %q", ErrInvalidConfig, selector)
	}

	cfg := base
	scheme, err := ParseScheme(parts[0])
	if err != nil {
		return Config{}, err
	}
	cfg.Scheme = scheme

	fields := []*int{&cfg.GHistoryBits, &cfg.LHistoryBits, &cfg.PCIndexBits}
	for i, part := range parts[1:] {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Config{}, fmt.Errorf("%w: bad width %q in %q", ErrInvalidConfig, part, selector)
		}
		*fields[i] = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}
