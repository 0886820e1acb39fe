package catalog

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed blocks/*.txt
var blockLists embed.FS

var errDefinition = errors.New("catalog: invalid block definition")

type definition struct {
	shape      shape
	texture    string
	block      string
	properties map[string]string
}

func readLines(name string) ([]string, error) {
	f, err := blockLists.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}
	return lines, s.Err()
}

func parseProperties(s string) (map[string]string, error) {
	p := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		parts := strings.Split(kv, "=")
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("%w: property %q", errDefinition, kv)
		}
		p[parts[0]] = parts[1]
	}
	return p, nil
}

func parseDefinition(s shape, line string) (definition, error) {
	d := definition{shape: s}

	fields := strings.Split(line, "|")
	switch len(fields) {
	case 3:
		p, err := parseProperties(fields[2])
		if err != nil {
			return d, err
		}
		d.properties = p
		fallthrough
	case 2:
		d.texture, d.block = fields[0], fields[1]
	default:
		return d, fmt.Errorf("%w: %q", errDefinition, line)
	}

	if d.texture == "" || d.block == "" {
		return d, fmt.Errorf("%w: %q", errDefinition, line)
	}

	return d, nil
}

// definitions returns every embedded block definition, in shape order and
// then file order.
func definitions() ([]definition, error) {
	shapes := make([]shape, 0, len(shapeFiles))
	for s := range shapeFiles {
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i] < shapes[j] })

	var defs []definition
	for _, s := range shapes {
		lines, err := readLines(shapeFiles[s])
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			d, err := parseDefinition(s, line)
			if err != nil {
				return nil, err
			}
			defs = append(defs, d)
		}
	}
	return defs, nil
}

// NonSurvival returns the textures of blocks that cannot be obtained in
// survival mode.
func NonSurvival() []string {
	lines, err := readLines("blocks/non_survival.txt")
	if err != nil {
		panic(err)
	}
	return lines
}
