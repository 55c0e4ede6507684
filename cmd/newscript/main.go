package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const scriptsDir = "assets/scripts"

const tmpl = `-- {{.Name}}: attach with ScriptComponent { Path: {{.Path}} }
local {{.Name}} = {
  speed = 1.0,
}

function {{.Name}}:OnCreate()
  log("{{.Name}} created on", self.owner:name())
end

function {{.Name}}:OnUpdate(dt)
  local x, y, z = self.owner:get_translation()
  -- TODO: implement behaviour
  self.owner:set_translation(x, y, z)
end

function {{.Name}}:OnDestroy()
end

return {{.Name}}
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/newscript <ScriptName>\n")
		fmt.Fprintf(os.Stderr, "Example: go run ./cmd/newscript EnemyChaser\n")
		os.Exit(1)
	}

	name := os.Args[1]
	if err := validName(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(scriptsDir, toSnakeCase(name)+".lua")
	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", outPath)
		os.Exit(1)
	}
	if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", scriptsDir, err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, []byte(render(name, filepath.ToSlash(outPath))), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", outPath)
	fmt.Printf("Attach it to an entity in a scene file:\n\n")
	fmt.Printf("    ScriptComponent:\n")
	fmt.Printf("      Path: %s\n", filepath.ToSlash(outPath))
}

func render(name, path string) string {
	content := strings.ReplaceAll(tmpl, "{{.Name}}", name)
	return strings.ReplaceAll(content, "{{.Path}}", path)
}

// validName accepts identifiers that are also valid Lua locals.
func validName(name string) error {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return fmt.Errorf("script name must start with an uppercase letter")
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return fmt.Errorf("script name %q must be ASCII letters, digits or underscores", name)
		}
	}
	return nil
}

func toSnakeCase(s string) string {
	var result []rune
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}
