// Package environment resolves the API base address from a deployment environment label.
package environment

import (
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"gopkg.in/yaml.v3"
)

// FallbackBase is used for any environment without a configured base.
const FallbackBase = "/api/v1"

// Environment labels recognised by the Resolver. Anything else resolves as Local.
const (
	Production = "production"
	Staging    = "staging"
	Local      = "local"
)

// Bases is the per-environment table of API base addresses. Empty entries fall back.
type Bases struct {
	Production string `yaml:"production"`
	Staging    string `yaml:"staging"`
	Local      string `yaml:"local"`
	Fallback   string `yaml:"fallback"`
}

// Resolver maps an environment label onto an API base address.
type Resolver struct {
	bases Bases
}

// NewResolver returns a Resolver over the given table.
func NewResolver(bases Bases) Resolver {
	if bases.Fallback == "" {
		bases.Fallback = FallbackBase
	}
	return Resolver{bases: bases}
}

// FromConfig builds a Resolver from the optional YAML table named by the config,
// with environment variable values taking precedence over file values.
func FromConfig(c config.EnvConfig) (Resolver, error) {
	var bases Bases
	if path := c.GetAPIBaseFile(); path != "" {
		fileBases, err := LoadFile(path)
		if err != nil {
			return Resolver{}, err
		}
		bases = fileBases
	}
	bases = bases.merge(Bases{
		Production: c.GetAPIBaseProduction(),
		Staging:    c.GetAPIBaseStaging(),
		Local:      c.GetAPIBaseLocal(),
	})
	return NewResolver(bases), nil
}

// LoadFile reads a YAML table of environment bases.
func LoadFile(path string) (Bases, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Bases{}, fmt.Errorf("read environment table %s: %w", path, err)
	}
	var bases Bases
	if err := yaml.Unmarshal(raw, &bases); err != nil {
		return Bases{}, fmt.Errorf("parse environment table %s: %w", path, err)
	}
	return bases, nil
}

// Resolve returns the base address for label. Matching is case-insensitive and an
// unset label resolves as Local.
func (r Resolver) Resolve(label string) string {
	var base string
	switch normalize(label) {
	case Production:
		base = r.bases.Production
	case Staging:
		base = r.bases.Staging
	default:
		base = r.bases.Local
	}
	if base == "" {
		return r.fallback()
	}
	return base
}

// ResolveBase resolves the label from config against config-driven bases.
func ResolveBase(c config.EnvConfig) (string, error) {
	r, err := FromConfig(c)
	if err != nil {
		return "", err
	}
	return r.Resolve(c.GetEnv()), nil
}

func (r Resolver) fallback() string {
	if r.bases.Fallback == "" {
		return FallbackBase
	}
	return r.bases.Fallback
}

func (b Bases) merge(override Bases) Bases {
	if override.Production != "" {
		b.Production = override.Production
	}
	if override.Staging != "" {
		b.Staging = override.Staging
	}
	if override.Local != "" {
		b.Local = override.Local
	}
	if override.Fallback != "" {
		b.Fallback = override.Fallback
	}
	return b
}

func normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return Local
	}
	return label
}
