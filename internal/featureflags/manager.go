// Package featureflags evaluates FEATURE_FLAGS rollouts, for example
// "popular_feed=25%,beta_map=off".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// PopularFeed allows the popular feed order. Viewers without it get recent.
	PopularFeed = "popular_feed"
)

// defaults apply to known flags that FEATURE_FLAGS does not mention.
var defaults = map[string]bool{
	PopularFeed: true,
}

// rule is one parsed flag: the share of profiles (0..100) it is enabled for.
type rule struct {
	raw     string
	percent int
}

// Manager answers whether a flag is on for a profile. A nil Manager serves
// the defaults.
type Manager struct {
	rules map[string]rule
}

// Parse builds a Manager and fails on the first malformed entry.
func Parse(raw string) (*Manager, error) {
	rules, errs := parse(raw)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return &Manager{rules: rules}, nil
}

// NewManager builds a Manager, skipping malformed entries.
func NewManager(raw string) *Manager {
	rules, _ := parse(raw)
	return &Manager{rules: rules}
}

func parse(raw string) (map[string]rule, []error) {
	rules := make(map[string]rule)
	var errs []error
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		name, value = normalize(name), normalize(value)
		if !ok || name == "" || value == "" {
			errs = append(errs, fmt.Errorf("feature flag %q: want name=value", entry))
			continue
		}
		pct, err := percentOf(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("feature flag %q: %w", name, err))
			continue
		}
		rules[name] = rule{raw: value, percent: pct}
	}
	return rules, errs
}

func percentOf(value string) (int, error) {
	switch value {
	case "on", "true", "1":
		return 100, nil
	case "off", "false", "0":
		return 0, nil
	}
	digits, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, fmt.Errorf("unknown value %q", value)
	}
	pct, err := strconv.Atoi(digits)
	if err != nil || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("rollout %q must be 0%% to 100%%", value)
	}
	return pct, nil
}

// Enabled reports whether name is on for profileID. Partial rollouts are
// stable per profile and never include anonymous viewers (profileID 0).
func (m *Manager) Enabled(name string, profileID uint) bool {
	name = normalize(name)
	var r rule
	var ok bool
	if m != nil {
		r, ok = m.rules[name]
	}
	if !ok {
		return defaults[name]
	}
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, profileID == 0:
		return false
	}
	return bucket(name, profileID) < r.percent
}

// Raw returns the configured values by flag name.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every configured and known flag for profileID.
func (m *Manager) Snapshot(profileID uint) map[string]bool {
	out := make(map[string]bool, len(defaults))
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, profileID)
	}
	return out
}

// Names lists configured and known flags in order.
func (m *Manager) Names() []string {
	seen := make(map[string]struct{}, len(defaults))
	for name := range defaults {
		seen[name] = struct{}{}
	}
	if m != nil {
		for name := range m.rules {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket places profileID in one of 100 slots for name.
func bucket(name string, profileID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + strconv.FormatUint(uint64(profileID), 10)))
	return int(h.Sum32() % 100)
}
