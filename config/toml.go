// Package config loads default flag values from TOML files.
//
// Keys are flag names, with dashes or underscores. A table named after a
// command scopes its keys to that command:
//
//	workers = 4
//	log-level = "debug"
//
//	[convert]
//	to = "png"
//	background = "#000"
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPaths lists the configuration files consulted when --config is not
// given. Missing files are skipped.
var DefaultPaths = []string{
	"~/.config/mbmp/config.toml",
	"./mbmp.toml",
}

var _ kong.ConfigurationLoader = TOML

// TOML is a kong.ConfigurationLoader for TOML documents.
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		table := values
		for _, name := range commandPath(parent) {
			sub, ok := lookup(table, name).(map[string]any)
			if !ok {
				table = nil
				break
			}
			table = sub
		}

		if raw := lookup(table, flag.Name); raw != nil {
			return flagValue(raw), nil
		}
		if raw := lookup(values, flag.Name); raw != nil {
			if _, isTable := raw.(map[string]any); !isTable {
				return flagValue(raw), nil
			}
		}
		return nil, nil
	}

	return f, nil
}

func commandPath(parent *kong.Path) []string {
	if parent == nil || parent.Command == nil {
		return nil
	}

	var names []string
	for n := parent.Command; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		names = append([]string{n.Name}, names...)
	}
	return names
}

func lookup(table map[string]any, name string) any {
	if table == nil {
		return nil
	}
	if v, ok := table[name]; ok {
		return v
	}
	if v, ok := table[strings.ReplaceAll(name, "-", "_")]; ok {
		return v
	}
	return nil
}

// flagValue renders a TOML value the way it would be typed on the command
// line, so kong's own mappers do the conversion.
func flagValue(raw any) any {
	switch v := raw.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return nil
	default:
		return fmt.Sprint(v)
	}
}
