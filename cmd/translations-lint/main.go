// translations-lint checks the achievement translation catalogs.
//
// Every *.toml file under -dir must parse, carry no empty messages and
// translate the same set of message IDs as the others.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// messageKeys are the keys go-i18n reads from a message table
var messageKeys = map[string]bool{
	"other": true, "description": true,
	"zero": true, "one": true, "two": true, "few": true, "many": true,
}

type catalog struct {
	path     string
	messages map[string]string
}

func main() {
	dir := flag.String("dir", "./locale/translations", "directory with *.toml catalogs")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*dir, "*.toml"))
	if err != nil {
		fmt.Println("error: cannot read", *dir+":", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("no .toml catalogs found in", *dir)
		return
	}

	exitCode := 0
	var catalogs []catalog
	for _, f := range files {
		c, problems, err := load(f)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			exitCode = 1
			continue
		}
		for _, p := range problems {
			fmt.Printf("%s: %s\n", f, p)
		}
		if len(problems) > 0 {
			exitCode = 1
		}
		catalogs = append(catalogs, c)
	}

	for _, line := range missingIDs(catalogs) {
		fmt.Println(line)
		exitCode = 1
	}

	if exitCode == 0 {
		fmt.Printf("%d catalogs OK\n", len(catalogs))
	}
	os.Exit(exitCode)
}

func load(path string) (catalog, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog{}, nil, fmt.Errorf("open error: %w", err)
	}
	return parse(path, data)
}

// parse accepts both message forms go-i18n reads: a plain string, or a
// table whose "other" key holds the text.
func parse(path string, data []byte) (catalog, []string, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return catalog{}, nil, fmt.Errorf("parse error: %w", err)
	}

	c := catalog{path: path, messages: make(map[string]string, len(raw))}
	var problems []string
	for _, id := range sortedKeys(raw) {
		var text string
		switch v := raw[id].(type) {
		case string:
			text = v
		case map[string]interface{}:
			for _, key := range sortedKeys(v) {
				if !messageKeys[key] {
					problems = append(problems, fmt.Sprintf("%q: unexpected key %q in message table", id, key))
				}
			}
			other, ok := v["other"].(string)
			if !ok {
				problems = append(problems, fmt.Sprintf("%q: table without an \"other\" string", id))
				continue
			}
			text = other
		default:
			problems = append(problems, fmt.Sprintf("%q: unsupported value type %T", id, v))
			continue
		}
		if text == "" {
			problems = append(problems, fmt.Sprintf("%q: empty translation", id))
		}
		c.messages[id] = text
	}
	return c, problems, nil
}

// missingIDs reports, per catalog, the IDs some other catalog translates
func missingIDs(catalogs []catalog) []string {
	union := map[string]struct{}{}
	for _, c := range catalogs {
		for id := range c.messages {
			union[id] = struct{}{}
		}
	}

	var out []string
	for _, c := range catalogs {
		for _, id := range sortedKeys(union) {
			if _, ok := c.messages[id]; !ok {
				out = append(out, fmt.Sprintf("%s: missing %q", c.path, id))
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
