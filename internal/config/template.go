package config

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/weiser-ai/weiser-go/internal/errs"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// expandTemplate replaces every `{{ NAME }}` placeholder in doc with a
// value from envFile, falling back to the ambient environment. Ambient
// wins over the file's value unless envFile was explicitly passed on the
// command line, in which case the file takes precedence — mirroring an
// operator who points -e at a file specifically to override their shell.
// `${NAME}` is left untouched; it is not a supported syntax.
func expandTemplate(doc string, fileVars map[string]string, envFileExplicit bool) (string, error) {
	var missing []string
	expanded := placeholderPattern.ReplaceAllStringFunc(doc, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		fileVal, inFile := fileVars[name]
		ambientVal, inAmbient := os.LookupEnv(name)

		switch {
		case envFileExplicit && inFile:
			return fileVal
		case inAmbient:
			return ambientVal
		case inFile:
			return fileVal
		default:
			missing = append(missing, name)
			return match
		}
	})
	if len(missing) > 0 {
		return "", errs.Config("unresolved template variable(s): %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// loadEnvFile parses a simple KEY=VALUE .env file, one assignment per
// line; blank lines and lines starting with # are skipped. Returns an
// empty map (not an error) when path is empty.
func loadEnvFile(path string) (map[string]string, error) {
	vars := make(map[string]string)
	if path == "" {
		return vars, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.ConfigWrap(err, "reading env file %q", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		vars[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.ConfigWrap(err, "reading env file %q", path)
	}
	return vars, nil
}
