package conformance

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flavor tells which suite layout a test file follows.
type Flavor uint8

const (
	// Sputnik files carry JSDoc-style tags such as @negative.
	Sputnik Flavor = iota
	// Test262 files carry YAML front matter between /*--- and ---*/.
	Test262
)

func (f Flavor) String() string {
	if f == Test262 {
		return "test262"
	}
	return "sputnik"
}

// Negative describes the error a negative test expects.
type Negative struct {
	// Phase is parse, early, resolution or runtime. Empty means any.
	Phase string `yaml:"phase"`
	// Type is the expected error constructor name. Empty means any.
	Type string `yaml:"type"`
}

// TestFile is one conformance test with its metadata.
type TestFile struct {
	Path        string
	Source      string
	Flavor      Flavor
	Description string
	Negative    *Negative
	Includes    []string
	Flags       []string
}

func (tf *TestFile) HasFlag(flag string) bool { return slices.Contains(tf.Flags, flag) }

type frontMatter struct {
	Description string    `yaml:"description"`
	Negative    *Negative `yaml:"negative"`
	Includes    []string  `yaml:"includes"`
	Flags       []string  `yaml:"flags"`
}

var (
	frontMatterPattern = regexp.MustCompile(`(?s)/\*---(.*?)---\*/`)
	docTagPattern      = regexp.MustCompile(`(?m)^\s*\*?\s*@(\w+)[ \t]*(.*?)\s*$`)
)

// ParseTestFile reads the metadata of a test from its source.
func ParseTestFile(path, source string) (*TestFile, error) {
	tf := &TestFile{Path: path, Source: source}
	if m := frontMatterPattern.FindStringSubmatch(source); m != nil {
		var fm frontMatter
		if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
			return nil, fmt.Errorf("%s: front matter: %w", path, err)
		}
		tf.Flavor = Test262
		tf.Description = strings.TrimSpace(fm.Description)
		tf.Negative = fm.Negative
		tf.Includes = fm.Includes
		tf.Flags = fm.Flags
		return tf, nil
	}

	tf.Flavor = Sputnik
	start := strings.Index(source, "/**")
	if start < 0 {
		return tf, nil
	}
	end := strings.Index(source[start:], "*/")
	if end < 0 {
		return nil, fmt.Errorf("%s: unterminated doc comment", path)
	}
	for _, m := range docTagPattern.FindAllStringSubmatch(source[start:start+end], -1) {
		switch m[1] {
		case "negative":
			// A value after the tag is a pattern for the error name.
			tf.Negative = &Negative{Type: m[2]}
		case "description":
			tf.Description = m[2]
		case "onlyStrict":
			tf.Flags = append(tf.Flags, "onlyStrict")
		case "noStrict":
			tf.Flags = append(tf.Flags, "noStrict")
		}
	}
	return tf, nil
}

// IsNegative reports whether the test passes by failing.
func (tf *TestFile) IsNegative() bool { return tf.Negative != nil }

// Program returns the source to run, with the strict directive prepended
// for strict-only tests.
func (tf *TestFile) Program() string {
	if tf.HasFlag("onlyStrict") {
		return "\"use strict\";\n" + tf.Source
	}
	return tf.Source
}
