// Package ingress reconciles the ordered routing table of a tunnel.
//
// A table maps inbound hostnames to internal services. It may end with a
// single catch-all rule (no hostname) that receives every unmatched
// request. Operations here never mutate their input; callers treat the
// table as copy-on-write and publish the returned slice as a whole.
package ingress

import (
	"encoding/json"
	"fmt"

	"github.com/ben-haas/clawhouse/internal/domain"
)

// DefaultCatchAllService answers unmatched requests with a 404.
const DefaultCatchAllService = "http_status:404"

// Rule maps an inbound hostname (or, when empty, everything) to a service.
type Rule struct {
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Service  string `json:"service" yaml:"service"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`

	// OriginRequest holds the rule's origin settings as the API returned
	// them, so a read-modify-write of a live table keeps them.
	OriginRequest json.RawMessage `json:"originRequest,omitempty" yaml:"-"`
}

// IsCatchAll reports whether r matches every hostname.
func (r Rule) IsCatchAll() bool {
	return r.Hostname == ""
}

// CatchAll returns the default catch-all rule.
func CatchAll() Rule {
	return Rule{Service: DefaultCatchAllService}
}

// Merge returns a new table with incoming placed immediately before the
// catch-all. A rule that already routes incoming's hostname is replaced in
// its current slot instead. An incoming catch-all takes the place of the
// existing one. The result always ends with exactly one catch-all: the
// first one found in existing, or the default when there is none. Merge
// never fails and never modifies existing.
func Merge(existing []Rule, incoming Rule) []Rule {
	out := make([]Rule, 0, len(existing)+2)
	catchAll := -1
	replaced := false

	for i, r := range existing {
		switch {
		case r.IsCatchAll():
			if catchAll == -1 {
				catchAll = i
			}
		case !incoming.IsCatchAll() && r.Hostname == incoming.Hostname:
			if !replaced {
				out = append(out, incoming)
				replaced = true
			}
		default:
			out = append(out, r)
		}
	}

	if incoming.IsCatchAll() {
		return append(out, incoming)
	}
	if !replaced {
		out = append(out, incoming)
	}
	if catchAll == -1 {
		return append(out, CatchAll())
	}
	return append(out, existing[catchAll])
}

// Validate checks the invariants a tunnel client expects of a table:
// every rule has a service, hostnames are unique, and the only catch-all
// (if any) is the last rule.
func Validate(rules []Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if r.Service == "" {
			return fmt.Errorf("%w: ingress rule %d has no service", domain.ErrInvalidConfig, i)
		}
		if r.IsCatchAll() {
			if i != len(rules)-1 {
				return fmt.Errorf("%w: catch-all ingress rule must be last (found at %d of %d)", domain.ErrInvalidConfig, i, len(rules))
			}
			continue
		}
		if _, dup := seen[r.Hostname]; dup {
			return fmt.Errorf("%w: duplicate ingress hostname %q", domain.ErrInvalidConfig, r.Hostname)
		}
		seen[r.Hostname] = struct{}{}
	}
	return nil
}
