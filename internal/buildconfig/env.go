package buildconfig

import (
	"bufio"
	"strings"

	"deploy-planner/internal/domain"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // naming heuristic
var sensitiveMarkers = []string{"password", "secret", "key"}

// IsSensitive reports whether a variable name looks like it holds a credential.
func IsSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ParseEnvExample lists the variables of an example-env file in file order.
// Each line is split on its first '='. A variable is required when the
// example gives it no value.
func ParseEnvExample(text string) []domain.EnvironmentVariable {
	vars := []domain.EnvironmentVariable{}
	index := make(map[string]int)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		name, raw, _ := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		value := exampleValue(name, strings.TrimSpace(raw))
		variable := domain.EnvironmentVariable{
			Name:      name,
			Required:  value == "",
			Sensitive: IsSensitive(name),
		}
		if value != "" {
			variable.DefaultValue = &value
		}

		if i, seen := index[name]; seen {
			vars[i] = variable
			continue
		}
		index[name] = len(vars)
		vars = append(vars, variable)
	}
	return vars
}

// exampleValue resolves quoting and inline comments of one value with
// godotenv. References such as ${VAULT_TOKEN} are placeholders in an example
// file and are kept verbatim instead of being expanded.
func exampleValue(name, raw string) string {
	if strings.Contains(raw, "$") {
		return unquote(raw)
	}
	values, err := godotenv.Unmarshal(name + "=" + raw)
	if err != nil {
		return unquote(raw)
	}
	return values[name]
}

func unquote(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return strings.Trim(raw, `"'`)
}
