// Package profile loads run profiles: YAML files describing
// a command to run and how to run it.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/monopole/procpipe"
	"golang.org/x/text/encoding"
	"gopkg.in/yaml.v3"
)

// DefaultEncoding is used when a profile names none.
const DefaultEncoding = "UTF-8"

// ErrInvalid is returned for profiles that fail validation.
var ErrInvalid = errors.New("invalid profile")

// Profile describes a command to run.
//
//	name: listing
//	command: ls
//	args: [-l, /tmp]
//	dir: /
//	env: [LC_ALL=C]
//	encoding: UTF-8
//	gracePeriod: 2s
//	strict: true
//	maxLineLen: 4096
type Profile struct {
	Name        string        `yaml:"name,omitempty"`
	Command     string        `yaml:"command"`
	Args        []string      `yaml:"args,omitempty"`
	Dir         string        `yaml:"dir,omitempty"`
	Env         []string      `yaml:"env,omitempty"`
	Encoding    string        `yaml:"encoding,omitempty"`
	GracePeriod time.Duration `yaml:"gracePeriod,omitempty"`
	Strict      bool          `yaml:"strict,omitempty"`
	MaxLineLen  int           `yaml:"maxLineLen,omitempty"`
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a profile.  Unknown fields are errors.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the profile, filling in the default encoding.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Command) == "" {
		return fmt.Errorf("%w: command is required", ErrInvalid)
	}
	if p.GracePeriod < 0 {
		return fmt.Errorf("%w: gracePeriod %s is negative", ErrInvalid, p.GracePeriod)
	}
	if p.MaxLineLen < 0 {
		return fmt.Errorf("%w: maxLineLen %d is negative", ErrInvalid, p.MaxLineLen)
	}
	for _, kv := range p.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return fmt.Errorf("%w: env entry %q is not KEY=VALUE", ErrInvalid, kv)
		}
	}
	if p.Encoding == "" {
		p.Encoding = DefaultEncoding
	}
	if _, err := procpipe.LookupEncoding(p.Encoding); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Cmd returns an unstarted command.  The profile's env entries
// are added to the current environment.
func (p *Profile) Cmd() *exec.Cmd {
	c := exec.Command(p.Command, p.Args...)
	c.Dir = p.Dir
	if len(p.Env) > 0 {
		c.Env = append(os.Environ(), p.Env...)
	}
	return c
}

// TextEncoding returns the profile's encoding.
func (p *Profile) TextEncoding() (encoding.Encoding, error) {
	name := p.Encoding
	if name == "" {
		name = DefaultEncoding
	}
	return procpipe.LookupEncoding(name)
}

// Params returns runner parameters.  Unset values are left
// for procpipe.Params to default.
func (p *Profile) Params() procpipe.Params {
	return procpipe.Params{
		Name:        p.Name,
		GracePeriod: p.GracePeriod,
		Strict:      p.Strict,
		MaxLineLen:  p.MaxLineLen,
	}
}
