// Package config reads YAML descriptions of bus systems and turns them into
// system specs.
//
// A description looks like this:
//
//	name: Demo
//	frequency_mhz: 48
//	masters:
//	  - name: CPU
//	    stages:
//	      - kind: write_buffer
//	        capacity: 2
//	    script:
//	      - {op: write, addr: 0x20000000, size: word, data: 0x55, prot: [data, bufferable]}
//	      - {op: read, addr: 0x20000000, size: word, gap: 2}
//	slaves:
//	  - name: SRAM
//	    kind: memory
//	    base: 0x20000000
//	    size: 0x10000
//	    read_wait_states: 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/system"
	"gopkg.in/yaml.v3"
)

// DefaultFrequencyMHz is the clock of a description that does not set one.
const DefaultFrequencyMHz = 48

var (
	// ErrInvalid is wrapped by every validation error.
	ErrInvalid = errors.New("invalid system description")

	// ErrZeroFrequency is returned for clocks that are not positive.
	ErrZeroFrequency = errors.New("frequency must be greater than zero")
)

// Config is a system description.
type Config struct {
	Name          string   `yaml:"name"`
	FrequencyMHz  float64  `yaml:"frequency_mhz"`
	ReflectsReady *bool    `yaml:"reflects_ready"`
	Masters       []Master `yaml:"masters"`
	Slaves        []Slave  `yaml:"slaves"`

	// dir is where relative image paths are resolved.
	dir string
}

// Master describes a scripted master.
type Master struct {
	Name         string   `yaml:"name"`
	NoPipelining bool     `yaml:"no_pipelining"`
	Stages       []Stage  `yaml:"stages"`
	Script       []Access `yaml:"script"`
}

// Access is one entry of a script.
type Access struct {
	Op   string   `yaml:"op"`
	Addr uint32   `yaml:"addr"`
	Size string   `yaml:"size"`
	Data uint32   `yaml:"data"`
	Gap  uint64   `yaml:"gap"`
	Prot []string `yaml:"prot"`

	// Repeat issues the access this many times. Zero means once.
	Repeat int `yaml:"repeat"`

	// Stride is added to the address after each repetition.
	Stride uint32 `yaml:"stride"`
}

// Stage describes a buffering stage.
type Stage struct {
	Kind       string  `yaml:"kind"`
	Capacity   int     `yaml:"capacity"`
	NativeSize string  `yaml:"native_size"`
	Registered []Range `yaml:"registered"`
}

// Range is an address range given by its base and its size.
type Range struct {
	Base uint32 `yaml:"base"`
	Size uint64 `yaml:"size"`
}

// Slave describes a slave port.
type Slave struct {
	Name            string `yaml:"name"`
	Kind            string `yaml:"kind"`
	Base            uint32 `yaml:"base"`
	Size            uint64 `yaml:"size"`
	ReadWaitStates  int    `yaml:"read_wait_states"`
	WriteWaitStates int    `yaml:"write_wait_states"`

	// Image is a file whose bytes are loaded at the base of a memory or a
	// ROM.
	Image string `yaml:"image"`

	Registers         []Register `yaml:"registers"`
	BackToBackPenalty int        `yaml:"back_to_back_penalty"`
	Policy            string     `yaml:"policy"`
	Stages            []Stage    `yaml:"stages"`
}

// Register describes a peripheral register.
type Register struct {
	Name          string `yaml:"name"`
	Offset        uint32 `yaml:"offset"`
	Reset         uint32 `yaml:"reset"`
	ReservedMask  uint32 `yaml:"reserved_mask"`
	ReadOnlyMask  uint32 `yaml:"read_only_mask"`
	WriteOnlyMask uint32 `yaml:"write_only_mask"`
}

// Load reads and validates a description file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system description: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.dir = filepath.Dir(path)

	return c, nil
}

// Parse decodes and validates a description. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	c := &Config{FrequencyMHz: DefaultFrequencyMHz}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("failed to parse system description: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks what can be checked without building the system.
func (c *Config) Validate() error {
	if c.FrequencyMHz <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, ErrZeroFrequency)
	}

	if c.Name != "" {
		if _, err := sim.ParseName(c.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	if len(c.Masters) == 0 {
		return fmt.Errorf("%w: no master", ErrInvalid)
	}

	if len(c.Slaves) == 0 {
		return fmt.Errorf("%w: no slave", ErrInvalid)
	}

	names := make(map[string]bool)

	for i, m := range c.Masters {
		if err := uniqueName(names, m.Name, "master", i); err != nil {
			return err
		}

		if err := m.validate(); err != nil {
			return err
		}
	}

	for i, s := range c.Slaves {
		if err := uniqueName(names, s.Name, "slave", i); err != nil {
			return err
		}

		if err := s.validate(); err != nil {
			return err
		}
	}

	return c.slavesMustNotOverlap()
}

func uniqueName(names map[string]bool, name, what string, index int) error {
	if name == "" {
		return fmt.Errorf("%w: %s %d has no name", ErrInvalid, what, index)
	}

	if _, err := sim.ParseName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if names[name] {
		return fmt.Errorf("%w: name %s is used twice", ErrInvalid, name)
	}

	names[name] = true

	return nil
}

func (m Master) validate() error {
	for i, a := range m.Script {
		if _, err := a.meta(); err != nil {
			return fmt.Errorf("%w: %s access %d: %w", ErrInvalid, m.Name, i, err)
		}

		if a.Repeat < 0 {
			return fmt.Errorf("%w: %s access %d repeats a negative number of times",
				ErrInvalid, m.Name, i)
		}
	}

	for i, st := range m.Stages {
		if st.Kind == string(system.StageLineBuffer) {
			return fmt.Errorf("%w: %s stage %d: line buffers go in front of slaves",
				ErrInvalid, m.Name, i)
		}
	}

	return validateStages(m.Name, m.Stages)
}

func (s Slave) validate() error {
	if s.Size == 0 || uint64(s.Base)+s.Size > 1<<32 {
		return fmt.Errorf("%w: %s at 0x%08x with 0x%x bytes does not fit the bus",
			ErrInvalid, s.Name, s.Base, s.Size)
	}

	if s.ReadWaitStates < 0 || s.WriteWaitStates < 0 || s.BackToBackPenalty < 0 {
		return fmt.Errorf("%w: %s has negative wait states", ErrInvalid, s.Name)
	}

	if _, err := slaveKind(s.Kind); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, s.Name, err)
	}

	if _, err := policy(s.Policy); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, s.Name, err)
	}

	isBank := s.Kind == "registers"
	if isBank && s.Image != "" {
		return fmt.Errorf("%w: register bank %s cannot load an image",
			ErrInvalid, s.Name)
	}

	if !isBank && len(s.Registers) > 0 {
		return fmt.Errorf("%w: %s is not a register bank", ErrInvalid, s.Name)
	}

	return validateStages(s.Name, s.Stages)
}

func validateStages(owner string, stages []Stage) error {
	for i, st := range stages {
		if _, err := st.spec(); err != nil {
			return fmt.Errorf("%w: %s stage %d: %w", ErrInvalid, owner, i, err)
		}
	}

	return nil
}

func (c *Config) slavesMustNotOverlap() error {
	for i := range c.Slaves {
		for j := i + 1; j < len(c.Slaves); j++ {
			a, b := c.Slaves[i], c.Slaves[j]
			if uint64(a.Base) < uint64(b.Base)+b.Size &&
				uint64(b.Base) < uint64(a.Base)+a.Size {
				return fmt.Errorf("%w: %s overlaps %s", ErrInvalid, a.Name, b.Name)
			}
		}
	}

	return nil
}
