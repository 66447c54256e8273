package config

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-git/gcfg"

	"github.com/coral-mesh/dbg/internal/safe"
)

// SectionName is the config file section holding the dbg settings.
const SectionName = "dbg"

// maxConfigFileSize bounds config file reads.
const maxConfigFileSize = 1 << 20

// LoadFile reads a config file into a Partial. Missing files return the
// underlying os error so callers can skip the layer; every other problem is
// returned as a warning and the affected field is left unset.
func LoadFile(path string) (Partial, []error, error) {
	data, err := safe.ReadFile(path, &safe.ReadOptions{MaxSize: maxConfigFileSize, AllowSymlinks: true})
	if err != nil {
		return Partial{}, nil, err
	}

	p, warnings := ParseINI(string(data))
	for i, w := range warnings {
		warnings[i] = fmt.Errorf("%s: %w", path, w)
	}
	return p, warnings, nil
}

// ParseINI parses git-config style text. A file without any section header
// is read as if it started with [dbg]. Keys of every section are applied;
// sections other than a single [dbg] are reported.
func ParseINI(text string) (Partial, []error) {
	var p Partial
	var warnings []error

	if !hasSection(text) {
		text = "[" + SectionName + "]\n" + text
	}

	var sections []string
	values := make(map[string]string)
	err := gcfg.ReadWithCallback(strings.NewReader(text), func(sect, sub, key, value string, blank bool) error {
		if key == "" {
			if label := sectionLabel(sect, sub); !slices.Contains(sections, label) {
				sections = append(sections, label)
			}
			return nil
		}
		key = strings.ToLower(key)
		switch {
		case !slices.Contains(Fields(), key):
			warnings = append(warnings, unknownField(key))
		case blank:
			warnings = append(warnings, fmt.Errorf("%s has no value", key))
		default:
			values[key] = value
		}
		return nil
	})
	if err != nil {
		return Partial{}, []error{fmt.Errorf("parse: %w", err)}
	}
	warnings = append(sectionWarnings(sections), warnings...)

	color, w := fileValue(FieldColor, values[FieldColor])
	warnings = appendWarning(warnings, w)
	if color != "" {
		mode, err := ParseColorMode(color)
		if err != nil {
			warnings = append(warnings, err)
		} else {
			p.Color = &mode
		}
	}

	style, w := fileValue(FieldStyle, values[FieldStyle])
	warnings = appendWarning(warnings, w)
	if style != "" {
		p.Style = &style
	}

	indent, w := fileValue(FieldIndent, values[FieldIndent])
	warnings = appendWarning(warnings, w)
	if indent != "" {
		n, err := strconv.Atoi(indent)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("invalid %s %q: not an integer", FieldIndent, indent))
		} else {
			p.Indent = &n
		}
	}

	warnings = append(warnings, p.Validate()...)
	return p, warnings
}

// fileValue trims a raw value and strips single quotes, which the INI
// syntax does not interpret. The error reports the stray quotes.
func fileValue(name, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return strings.TrimSpace(v[1 : len(v)-1]), fmt.Errorf("quotes around %s value are not needed", name)
	}
	return v, nil
}

func sectionLabel(sect, sub string) string {
	sect = strings.ToLower(sect)
	if sub != "" {
		return fmt.Sprintf("%s %q", sect, sub)
	}
	return sect
}

// sectionWarnings reports every section other than one [dbg].
func sectionWarnings(sections []string) []error {
	var warnings []error
	switch {
	case len(sections) == 1 && sections[0] != SectionName:
		warnings = append(warnings, fmt.Errorf("wrong section [%s]: use [%s] or no section", sections[0], SectionName))
	case len(sections) > 1:
		for _, name := range sections {
			if name != SectionName {
				warnings = append(warnings, fmt.Errorf("extra section [%s]: use no section or a single [%s]", name, SectionName))
			}
		}
	}
	return warnings
}

func unknownField(key string) error {
	if near := suggestField(key); near != "" {
		return fmt.Errorf("unknown field %q, did you mean %q?", key, near)
	}
	return fmt.Errorf("unknown field %q", key)
}

func appendWarning(warnings []error, err error) []error {
	if err != nil {
		return append(warnings, err)
	}
	return warnings
}

// hasSection reports whether the first meaningful line is a section header.
func hasSection(text string) bool {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		return line[0] == '['
	}
	return false
}
