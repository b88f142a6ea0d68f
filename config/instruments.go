package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Instrument describes the unit convention of one traded instrument.
type Instrument struct {
	// Multiplier converts price points times position size into account currency,
	// e.g. 100000 for a standard FX lot. Zero means 1.
	Multiplier float64 `yaml:"multiplier"`
	// StopLoss is used for risk/reward when a trade has no recorded stop.
	StopLoss *float64 `yaml:"stop_loss,omitempty"`
	// Symbol overrides the exchange symbol used for mark prices.
	Symbol string `yaml:"symbol,omitempty"`
}

// Instruments holds per-instrument conventions keyed by instrument name.
type Instruments struct {
	Default     Instrument            `yaml:"default"`
	Instruments map[string]Instrument `yaml:"instruments"`
}

// LoadInstruments reads instrument conventions from a YAML file. An empty path yields
// conventions where every instrument uses a multiplier of 1.
func LoadInstruments(path string) (*Instruments, error) {
	if path == "" {
		return &Instruments{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instruments file %s: %w", path, err)
	}
	return ParseInstruments(data)
}

// ParseInstruments decodes instrument conventions from YAML.
func ParseInstruments(data []byte) (*Instruments, error) {
	var inst Instruments
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse instruments: %w", err)
	}

	normalized := make(map[string]Instrument, len(inst.Instruments))
	for name, ins := range inst.Instruments {
		if ins.Multiplier < 0 {
			return nil, fmt.Errorf("instrument %s: multiplier cannot be negative", name)
		}
		normalized[instrumentKey(name)] = ins
	}
	if inst.Default.Multiplier < 0 {
		return nil, fmt.Errorf("default multiplier cannot be negative")
	}
	inst.Instruments = normalized
	return &inst, nil
}

// Lookup returns the convention for an instrument, falling back to the defaults for
// anything not listed.
func (i *Instruments) Lookup(instrument string) Instrument {
	ins, ok := i.Instruments[instrumentKey(instrument)]
	if !ok {
		return i.Default
	}
	if ins.Multiplier == 0 {
		ins.Multiplier = i.Default.Multiplier
	}
	if ins.StopLoss == nil {
		ins.StopLoss = i.Default.StopLoss
	}
	return ins
}

// Symbols returns the explicit exchange symbol overrides.
func (i *Instruments) Symbols() map[string]string {
	symbols := make(map[string]string)
	for name, ins := range i.Instruments {
		if ins.Symbol != "" {
			symbols[name] = ins.Symbol
		}
	}
	return symbols
}

func instrumentKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
