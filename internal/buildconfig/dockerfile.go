package buildconfig

import (
	"bufio"
	"strconv"
	"strings"

	"deploy-planner/internal/domain"
)

// AnalyzeDockerfile performs a line-oriented scan of a Dockerfile.
// It is not a parser: continuation lines, build args and stage references are ignored.
func AnalyzeDockerfile(text string) *domain.DockerfileAnalysis {
	analysis := &domain.DockerfileAnalysis{
		ExposedPorts: []int{},
	}
	seenPorts := make(map[int]bool)
	stages := 0

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		args := fields[1:]

		switch strings.ToUpper(fields[0]) {
		case "FROM":
			stages++
			image, alias := fromImage(args)
			if image != "" {
				analysis.BaseImage = image
			}
			if stages > 1 || alias {
				analysis.MultiStage = true
			}
		case "EXPOSE":
			for _, token := range args {
				port, ok := exposedPort(token)
				if !ok || seenPorts[port] {
					continue
				}
				seenPorts[port] = true
				analysis.ExposedPorts = append(analysis.ExposedPorts, port)
			}
		case "WORKDIR":
			if len(args) > 0 {
				analysis.Workdir = strings.Join(args, " ")
			}
		case "USER":
			if len(args) > 0 {
				analysis.User = args[0]
			}
		case "HEALTHCHECK":
			analysis.Healthcheck = len(args) == 0 || !strings.EqualFold(args[0], "NONE")
		}
	}
	return analysis
}

// fromImage returns the image reference of a FROM line and whether it names a stage.
func fromImage(args []string) (string, bool) {
	image := ""
	for i, arg := range args {
		if strings.HasPrefix(arg, "--") {
			continue
		}
		if image == "" {
			image = arg
			continue
		}
		if strings.EqualFold(arg, "as") && i+1 < len(args) {
			return image, true
		}
	}
	return image, false
}

// exposedPort accepts "3000" and "3000/tcp"; anything else is dropped.
func exposedPort(token string) (int, bool) {
	if idx := strings.Index(token, "/"); idx >= 0 {
		token = token[:idx]
	}
	port, err := strconv.Atoi(token)
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}
