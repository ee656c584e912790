package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/provision"
)

// Deployment is the on-disk description of one host's deployment. Exactly
// one of ReverseProxy and Tunnel is set, matching Mode.
//
// Deployment files are YAML. ${VAR} references are expanded from the
// environment before parsing so secrets can stay out of the file; an
// unset variable is an error. A literal dollar sign is written as $$, so
// a secret "ab$cd" appears in the file as "ab$$cd".
type Deployment struct {
	Mode         string                     `yaml:"mode,omitempty"`
	ComposePath  string                     `yaml:"composePath,omitempty"`
	RuntimeImage string                     `yaml:"runtimeImage,omitempty"`
	ReverseProxy *compose.ReverseProxyInput `yaml:"reverseProxy,omitempty"`
	Tunnel       *compose.TunnelInput       `yaml:"tunnel,omitempty"`
}

// LoadDeployment reads and parses the deployment file at path.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	d, err := ParseDeployment(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDeployment expands environment references in data and decodes the
// result. Unknown keys are rejected.
func ParseDeployment(data []byte) (*Deployment, error) {
	expanded, err := envsubst.StringRestricted(string(data), true, false)
	if err != nil {
		return nil, fmt.Errorf("%w: substitution failed: %v (write $$ for a literal $)", domain.ErrInvalidConfig, err)
	}

	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)

	var d Deployment
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: deployment file is empty", domain.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return &d, nil
}

// Input resolves d into a provisioning input. Optional fields left empty
// in the file fall back to prefs, which may be nil.
func (d *Deployment) Input(prefs *Config) (provision.Input, error) {
	mode, err := domain.ParseDeployMode(d.Mode)
	if err != nil {
		return provision.Input{}, err
	}

	var topology compose.Topology
	switch mode {
	case domain.ModeReverseProxy:
		if d.ReverseProxy == nil || d.Tunnel != nil {
			return provision.Input{}, sectionError(mode, "reverseProxy", "tunnel")
		}
		topology = d.ReverseProxy.WithDefaults()
	case domain.ModeTunnel:
		if d.Tunnel == nil || d.ReverseProxy != nil {
			return provision.Input{}, sectionError(mode, "tunnel", "reverseProxy")
		}
		topology = d.Tunnel.WithDefaults()
	}
	if err := topology.Validate(); err != nil {
		return provision.Input{}, err
	}

	in := provision.Input{
		Topology:     topology,
		ComposePath:  d.ComposePath,
		RuntimeImage: d.RuntimeImage,
	}
	if prefs != nil {
		if in.ComposePath == "" {
			in.ComposePath = prefs.ComposePath
		}
		if in.RuntimeImage == "" {
			in.RuntimeImage = prefs.RuntimeImage
		}
	}
	return in, nil
}

func sectionError(mode domain.DeployMode, want, other string) error {
	return fmt.Errorf("%w: mode %s requires a %q section and no %q section", domain.ErrInvalidConfig, mode, want, other)
}
