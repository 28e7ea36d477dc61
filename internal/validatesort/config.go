package validatesort

import (
	"fmt"
	"sort"
	"strings"

	"seqguard/internal/order"
	"seqguard/pkg/framework"
)

// DefaultField is the payload key that holds the sequence when Config.Field is empty.
const DefaultField = "data"

// Config is fixed when the node is built. Every signal kind is suppressed
// unless its flag is set.
type Config struct {
	ListOrder order.Order
	Field     string
	OnAlert   bool
	OnReset   bool
	OnRevoke  bool
	OnReport  bool
}

// Forwards reports whether sig is enabled.
func (c Config) Forwards(sig framework.Signal) bool {
	switch sig {
	case framework.SignalAlert:
		return c.OnAlert
	case framework.SignalReset:
		return c.OnReset
	case framework.SignalRevoke:
		return c.OnRevoke
	case framework.SignalReport:
		return c.OnReport
	}
	return false
}

// Validate checks the preferred order and fills in the default field.
func (c *Config) Validate() error {
	if _, err := order.ParseOrder(string(c.ListOrder)); err != nil {
		return fmt.Errorf("list_order: %w", err)
	}
	if c.Field == "" {
		c.Field = DefaultField
	}
	return nil
}

// ParseConfig builds a Config from a raw option map as found in a pipeline
// definition:
//
//	list_order: ascending
//	field: data
//	on_alert: true
//
// Unknown keys, including on_* keys for signal kinds that do not exist,
// are rejected.
func ParseConfig(raw map[string]any) (Config, error) {
	var cfg Config

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		switch {
		case k == "list_order":
			s, ok := v.(string)
			if !ok {
				return Config{}, fmt.Errorf("list_order: want string, got %T", v)
			}
			cfg.ListOrder = order.Order(s)
		case k == "field":
			s, ok := v.(string)
			if !ok {
				return Config{}, fmt.Errorf("field: want string, got %T", v)
			}
			cfg.Field = s
		case strings.HasPrefix(k, "on_"):
			sig, err := framework.ParseSignal(strings.TrimPrefix(k, "on_"))
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", k, err)
			}
			enabled, ok := v.(bool)
			if !ok {
				return Config{}, fmt.Errorf("%s: want bool, got %T", k, v)
			}
			cfg.set(sig, enabled)
		default:
			return Config{}, fmt.Errorf("unknown option %q", k)
		}
	}

	if cfg.ListOrder == "" {
		return Config{}, fmt.Errorf("list_order is required")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) set(sig framework.Signal, enabled bool) {
	switch sig {
	case framework.SignalAlert:
		c.OnAlert = enabled
	case framework.SignalReset:
		c.OnReset = enabled
	case framework.SignalRevoke:
		c.OnRevoke = enabled
	case framework.SignalReport:
		c.OnReport = enabled
	}
}
