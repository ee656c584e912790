package config

import (
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/util"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "base-domain").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "compose-path",
		Description: "Host path the compose manifest is written to",
		Get:         func(cfg *Config) string { return cfg.ComposePath },
		Set:         func(cfg *Config, v string) { cfg.ComposePath = v },
	},
	{
		Name:        "runtime-image",
		Description: "Runtime image pre-pulled at the end of provisioning",
		Get:         func(cfg *Config) string { return cfg.RuntimeImage },
		Set:         func(cfg *Config, v string) { cfg.RuntimeImage = v },
	},
	{
		Name:        "base-domain",
		Description: "Registered domain instance hostnames are built under",
		Get:         func(cfg *Config) string { return cfg.BaseDomain },
		Set:         func(cfg *Config, v string) { cfg.BaseDomain = v },
	},
	{
		Name:        "subdomain",
		Description: "Label between the host shard and the base domain",
		Get:         func(cfg *Config) string { return cfg.Subdomain },
		Set:         func(cfg *Config, v string) { cfg.Subdomain = v },
	},
	{
		Name:        "instance-prefix",
		Description: "Prefix prepended to instance ids in hostnames",
		Get:         func(cfg *Config) string { return cfg.InstancePrefix },
		Set:         func(cfg *Config, v string) { cfg.InstancePrefix = v },
	},
	{
		Name:        "zone-id",
		Description: "Cloudflare zone used when --zone-id is not specified",
		Get:         func(cfg *Config) string { return cfg.ZoneID },
		Set:         func(cfg *Config, v string) { cfg.ZoneID = v },
	},
	{
		Name:        "account-id",
		Description: "Cloudflare account used when --account-id is not specified",
		Get:         func(cfg *Config) string { return cfg.AccountID },
		Set:         func(cfg *Config, v string) { cfg.AccountID = v },
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := util.NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
