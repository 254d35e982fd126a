package manifest

import (
	"bufio"
	"regexp"
	"strings"
)

// requirementOperators are tried in order; two-character operators must come first.
var requirementOperators = []string{"==", ">=", "<=", "~=", ">", "<"} //nolint:gochecknoglobals // lookup table

// Requirement is one parsed line of a requirements listing.
type Requirement struct {
	Name     string
	Operator string // "==", ">=", ...; empty when unconstrained
	Version  string // empty when unconstrained
}

// Constraint joins the operator and version back together.
func (r Requirement) Constraint() string {
	if r.Version == "" {
		return ""
	}
	return r.Operator + r.Version
}

// ParseRequirementLine splits a requirements line on the earliest version
// operator. Comments, blank lines and pip options yield ok=false.
func ParseRequirementLine(line string) (Requirement, bool) {
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return Requirement{}, false
	}
	// environment markers
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}

	cut, op := -1, ""
	for _, candidate := range requirementOperators {
		idx := strings.Index(line, candidate)
		if idx >= 0 && (cut < 0 || idx < cut) {
			cut, op = idx, candidate
		}
	}

	name, version := line, ""
	if cut < 0 {
		op = ""
	} else {
		name = line[:cut]
		version = strings.TrimSpace(line[cut+len(op):])
	}
	name = strings.TrimSpace(name)
	// extras: "uvicorn[standard]"
	if idx := strings.Index(name, "["); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	if name == "" {
		return Requirement{}, false
	}
	return Requirement{Name: name, Operator: op, Version: version}, true
}

// ParseRequirements parses every meaningful line of a requirements listing in order.
func ParseRequirements(text string) []Requirement {
	var requirements []Requirement
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if req, ok := ParseRequirementLine(scanner.Text()); ok {
			requirements = append(requirements, req)
		}
	}
	return requirements
}

// Gem is one `gem` declaration of a Gemfile.
type Gem struct {
	Name    string
	Version string
	Groups  []string
}

var (
	gemLine   = regexp.MustCompile(`^gem\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`) //nolint:gochecknoglobals // compiled once
	groupLine = regexp.MustCompile(`^group\s+(.+?)\s+do\b`)                                //nolint:gochecknoglobals // compiled once
	groupName = regexp.MustCompile(`:(\w+)`)                                              //nolint:gochecknoglobals // compiled once
)

// ParseGemfile returns the gems declared in a Gemfile together with their enclosing groups.
func ParseGemfile(text string) []Gem {
	var gems []Gem
	var groups []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case groupLine.MatchString(line):
			groups = nil
			for _, m := range groupName.FindAllStringSubmatch(groupLine.FindStringSubmatch(line)[1], -1) {
				groups = append(groups, m[1])
			}
		case line == "end":
			groups = nil
		case gemLine.MatchString(line):
			m := gemLine.FindStringSubmatch(line)
			gems = append(gems, Gem{Name: m[1], Version: m[2], Groups: groups})
		}
	}
	return gems
}

var goDirective = regexp.MustCompile(`(?m)^go\s+(\d+(?:\.\d+)*)\s*$`) //nolint:gochecknoglobals // compiled once

// GoVersion returns the `go` directive of a go.mod file.
func GoVersion(text string) string {
	if m := goDirective.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// GoRequires returns module paths named by require directives, in file order.
func GoRequires(text string) []string {
	var modules []string
	inBlock := false
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		switch {
		case line == "require (":
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock && line != "":
			modules = append(modules, strings.Fields(line)[0])
		case strings.HasPrefix(line, "require "):
			if fields := strings.Fields(line); len(fields) >= 2 {
				modules = append(modules, fields[1])
			}
		}
	}
	return modules
}

// Tokens splits free-form manifest text into lowercase identifier-like tokens.
// Used where a manifest is matched by name rather than fully parsed.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || strings.ContainsRune("-_.:/@", r))
	})
}
