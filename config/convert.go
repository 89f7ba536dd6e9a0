package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/interconnect"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/peripheral"
	"github.com/sarchlab/ahbsim/sim"
	"github.com/sarchlab/ahbsim/system"
)

var sizes = map[string]ahb.Size{
	"byte":     ahb.SizeByte,
	"halfword": ahb.SizeHalfword,
	"word":     ahb.SizeWord,
}

var protBits = map[string]ahb.Prot{
	"data":       ahb.ProtData,
	"privileged": ahb.ProtPrivileged,
	"bufferable": ahb.ProtBufferable,
	"cacheable":  ahb.ProtCacheable,
}

func size(name string) (ahb.Size, error) {
	if name == "" {
		return ahb.SizeWord, nil
	}

	s, found := sizes[name]
	if !found {
		return 0, fmt.Errorf("unknown size %q", name)
	}

	return s, nil
}

func (a Access) meta() (ahb.TransferMeta, error) {
	s, err := size(a.Size)
	if err != nil {
		return ahb.TransferMeta{}, err
	}

	var meta ahb.TransferMeta

	switch a.Op {
	case "read":
		meta = ahb.Read(a.Addr, s)
	case "write":
		meta = ahb.Write(a.Addr, s)
	default:
		return ahb.TransferMeta{}, fmt.Errorf("unknown op %q", a.Op)
	}

	if a.Prot != nil {
		var prot ahb.Prot

		for _, name := range a.Prot {
			bit, found := protBits[name]
			if !found {
				return ahb.TransferMeta{}, fmt.Errorf("unknown prot flag %q", name)
			}

			prot |= bit
		}

		meta = meta.WithProt(prot)
	}

	return meta, nil
}

// accesses expands the repetitions of an entry. Only the first repetition
// waits for the gap.
func (a Access) accesses() []master.Access {
	meta, _ := a.meta()

	n := a.Repeat
	if n == 0 {
		n = 1
	}

	out := make([]master.Access, 0, n)
	for i := 0; i < n; i++ {
		acc := master.Access{Meta: meta, Data: ahb.Data(a.Data)}
		if i == 0 {
			acc.Gap = a.Gap
		}

		out = append(out, acc)
		meta.Addr += a.Stride
	}

	return out
}

func (st Stage) spec() (system.StageSpec, error) {
	spec := system.StageSpec{
		Kind:     system.StageKind(st.Kind),
		Capacity: st.Capacity,
	}

	switch spec.Kind {
	case system.StageInput, system.StageWriteBuffer:
	case system.StageLineBuffer:
		s, err := size(st.NativeSize)
		if err != nil {
			return spec, err
		}

		spec.NativeSize = s
	case system.StageRegistration:
		if len(st.Registered) == 0 {
			return spec, fmt.Errorf("registration buffer registers nothing")
		}

		for _, r := range st.Registered {
			spec.Registered = append(spec.Registered,
				ahb.AddressRange{Low: r.Base, High: uint64(r.Base) + r.Size})
		}
	default:
		return spec, fmt.Errorf("unknown stage kind %q", st.Kind)
	}

	if spec.Kind == system.StageWriteBuffer && spec.Capacity <= 0 {
		return spec, fmt.Errorf("write buffer must hold at least one write")
	}

	return spec, nil
}

func slaveKind(name string) (system.SlaveKind, error) {
	switch k := system.SlaveKind(name); k {
	case system.SlaveMemory, system.SlaveROM, system.SlaveRegisters:
		return k, nil
	case "":
		return system.SlaveMemory, nil
	default:
		return "", fmt.Errorf("unknown slave kind %q", name)
	}
}

func policy(name string) (interconnect.Policy, error) {
	p, found := interconnect.PolicyByName(name)
	if !found {
		return nil, fmt.Errorf("unknown arbitration policy %q", name)
	}

	return p, nil
}

// Freq returns the clock frequency.
func (c *Config) Freq() sim.Freq {
	return sim.Freq(c.FrequencyMHz) * sim.MHz
}

// MasterSpecs converts the masters.
func (c *Config) MasterSpecs() []system.MasterSpec {
	specs := make([]system.MasterSpec, 0, len(c.Masters))

	for _, m := range c.Masters {
		spec := system.MasterSpec{
			Name:         m.Name,
			NoPipelining: m.NoPipelining,
			Stages:       stageSpecs(m.Stages),
		}

		for _, a := range m.Script {
			spec.Script = append(spec.Script, a.accesses()...)
		}

		specs = append(specs, spec)
	}

	return specs
}

// SlaveSpecs converts the slaves, reading their image files.
func (c *Config) SlaveSpecs() ([]system.SlaveSpec, error) {
	specs := make([]system.SlaveSpec, 0, len(c.Slaves))

	for _, s := range c.Slaves {
		kind, _ := slaveKind(s.Kind)
		p, _ := policy(s.Policy)

		spec := system.SlaveSpec{
			Name:              s.Name,
			Kind:              kind,
			Base:              s.Base,
			Size:              s.Size,
			ReadWaitStates:    s.ReadWaitStates,
			WriteWaitStates:   s.WriteWaitStates,
			BackToBackPenalty: s.BackToBackPenalty,
			Policy:            p,
			Stages:            stageSpecs(s.Stages),
		}

		for _, r := range s.Registers {
			spec.Registers = append(spec.Registers, peripheral.Register{
				Name:          r.Name,
				Offset:        r.Offset,
				Reset:         r.Reset,
				ReservedMask:  r.ReservedMask,
				ReadOnlyMask:  r.ReadOnlyMask,
				WriteOnlyMask: r.WriteOnlyMask,
			})
		}

		if s.Image != "" {
			image, err := c.readImage(s.Image)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name, err)
			}

			spec.Image = image
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

func (c *Config) readImage(path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return image, nil
}

func stageSpecs(stages []Stage) []system.StageSpec {
	specs := make([]system.StageSpec, 0, len(stages))

	for _, st := range stages {
		spec, _ := st.spec()
		specs = append(specs, spec)
	}

	return specs
}

// Builder returns a system builder that builds the described system on the
// harness.
func (c *Config) Builder(h *sim.Harness) (system.Builder, error) {
	b := system.MakeBuilder().WithHarness(h)

	if c.ReflectsReady != nil {
		b = b.WithReflectsReady(*c.ReflectsReady)
	}

	for _, m := range c.MasterSpecs() {
		b = b.WithMaster(m)
	}

	slaves, err := c.SlaveSpecs()
	if err != nil {
		return b, err
	}

	for _, s := range slaves {
		b = b.WithSlave(s)
	}

	return b, nil
}
