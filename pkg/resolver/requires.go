package resolver

import "regexp"

// Both accepted require forms: require("mod.name") and require "mod.name",
// with either quote style. Lua grammar beyond this is out of scope.
var requirePatterns = []*regexp.Regexp{
	regexp.MustCompile(`require\s*\(\s*["']([^"']+)["']\s*\)`),
	regexp.MustCompile(`require\s+["']([^"']+)["']`),
}

// ExtractRequires returns the de-duplicated module names referenced by
// require statements in a file's text. Order is not guaranteed.
func ExtractRequires(content string) []string {
	seen := make(map[string]bool)
	var modules []string

	for _, pattern := range requirePatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				modules = append(modules, name)
			}
		}
	}

	return modules
}
