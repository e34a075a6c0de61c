// Package config builds the immutable runtime Config (topology,
// latencies) described in spec §6, replacing the Config::instance
// global singleton flagged in spec §9 with an explicit value built
// through functional options, mirroring eventloop/options.go's
// LoopOption/resolveLoopOptions pattern.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jameshanlon/tool-axe/internal/latency"
	"github.com/jameshanlon/tool-axe/internal/simerr"
)

// Config is the simulator's immutable runtime configuration. When
// loaded from a file, LatencyGlobalMemory and LatencyLocalMemory are
// stored already scaled by CyclesPerTick, matching the original's
// load-time scaling; the other latency fields are stored as given.
type Config struct {
	NumChips        int
	TilesPerChip    int
	TilesPerSwitch  int
	SwitchesPerChip int

	SwitchContentionFactor float64

	LatencyGlobalMemory  int
	LatencyLocalMemory   int
	LatencyThread        int
	LatencyToken         int
	LatencyTileSwitch    int
	LatencySwitch        int
	LatencyClosedSwitch  int
	LatencySerialisation int
	LatencyLinkOnChip    int
	LatencyLinkOffChip   int

	LatencyModelType latency.Topology

	CyclesPerTick int

	RAMSizeLog uint
	RAMBase    uint32
}

// Option mutates a Config under construction, following the teacher's
// functional-options idiom (eventloop.LoopOption).
type Option func(*Config)

func WithNumChips(n int) Option           { return func(c *Config) { c.NumChips = n } }
func WithTilesPerChip(n int) Option       { return func(c *Config) { c.TilesPerChip = n } }
func WithTilesPerSwitch(n int) Option     { return func(c *Config) { c.TilesPerSwitch = n } }
func WithSwitchesPerChip(n int) Option    { return func(c *Config) { c.SwitchesPerChip = n } }
func WithLatencyModel(t latency.Topology) Option { return func(c *Config) { c.LatencyModelType = t } }

// New builds a Config with the original's documented defaults, then
// applies opts.
func New(opts ...Option) *Config {
	c := &Config{
		RAMSizeLog:             16,
		CyclesPerTick:          4,
		LatencyModelType:       latency.None,
		SwitchContentionFactor: 1,
	}
	c.RAMBase = 1 << c.RAMSizeLog
	for _, o := range opts {
		o(c)
	}
	return c
}

// ToLatencyParams builds the latency.Params this Config describes, for
// constructing a latency.Model.
func (c *Config) ToLatencyParams() latency.Params {
	return latency.Params{
		Topology:               c.LatencyModelType,
		NumChips:                c.NumChips,
		TilesPerChip:            c.TilesPerChip,
		TilesPerSwitch:          c.TilesPerSwitch,
		SwitchesPerChip:         c.SwitchesPerChip,
		LatencyThread:           c.LatencyThread,
		LatencyToken:            c.LatencyToken,
		LatencyTileSwitch:       c.LatencyTileSwitch,
		LatencySwitch:           c.LatencySwitch,
		LatencyClosedSwitch:     c.LatencyClosedSwitch,
		LatencySerialisation:    c.LatencySerialisation,
		LatencyLinkOnChip:       c.LatencyLinkOnChip,
		LatencyLinkOffChip:      c.LatencyLinkOffChip,
		SwitchContentionFactor:  c.SwitchContentionFactor,
		CyclesPerTick:           c.CyclesPerTick,
	}
}

var topologyNames = map[string]latency.Topology{
	"none":        latency.None,
	"sp-2dmesh":   latency.SP2DMesh,
	"sp-clos":     latency.SPClos,
	"rand-2dmesh": latency.Rand2DMesh,
	"rand-clos":   latency.RandClos,
}

// Load parses the key-whitespace-value configuration text format of
// spec §6 from path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &simerr.ConfigError{Path: path, Cause: err}
	}
	defer f.Close()
	c, err := parse(f)
	if err != nil {
		return nil, &simerr.ConfigError{Path: path, Cause: err}
	}
	return c, nil
}

func parse(r io.Reader) (*Config, error) {
	c := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		key := fields[0]
		rest := strings.TrimSpace(strings.TrimPrefix(line, key))
		if err := applyKey(c, key, rest); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	c.LatencyGlobalMemory *= c.CyclesPerTick
	c.LatencyLocalMemory *= c.CyclesPerTick
	return c, nil
}

func applyKey(c *Config, key, value string) error {
	asInt := func() (int, error) { return strconv.Atoi(strings.TrimSpace(value)) }
	asFloat := func() (float64, error) { return strconv.ParseFloat(strings.TrimSpace(value), 64) }

	switch key {
	case "num-chips":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.NumChips = v
	case "tiles-per-chip":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.TilesPerChip = v
	case "tiles-per-switch":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.TilesPerSwitch = v
	case "switches-per-chip":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.SwitchesPerChip = v
	case "switch-contention-factor":
		v, err := asFloat()
		if err != nil {
			return err
		}
		c.SwitchContentionFactor = v
	case "latency-global-memory":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyGlobalMemory = v
	case "latency-local-memory":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyLocalMemory = v
	case "latency-thread":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyThread = v
	case "latency-token":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyToken = v
	case "latency-tile-switch":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyTileSwitch = v
	case "latency-switch":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencySwitch = v
	case "latency-closed-switch":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyClosedSwitch = v
	case "latency-serialisation":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencySerialisation = v
	case "latency-link-on-chip":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyLinkOnChip = v
	case "latency-link-off-chip":
		v, err := asInt()
		if err != nil {
			return err
		}
		c.LatencyLinkOffChip = v
	case "latency-model":
		name := strings.Trim(strings.TrimSpace(value), `"`)
		t, ok := topologyNames[name]
		if !ok {
			return fmt.Errorf("unknown latency-model %q", name)
		}
		c.LatencyModelType = t
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Display writes a human-readable dump of c to w, for the -C flag.
func (c *Config) Display(w io.Writer) {
	fmt.Fprintf(w, "num-chips %d\n", c.NumChips)
	fmt.Fprintf(w, "tiles-per-chip %d\n", c.TilesPerChip)
	fmt.Fprintf(w, "tiles-per-switch %d\n", c.TilesPerSwitch)
	fmt.Fprintf(w, "switches-per-chip %d\n", c.SwitchesPerChip)
	fmt.Fprintf(w, "switch-contention-factor %g\n", c.SwitchContentionFactor)
}
