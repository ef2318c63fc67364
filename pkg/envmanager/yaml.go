package envmanager

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlEnvironment struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// AddYAML ingests definitions keyed by API name, each holding an ordered list
// of environments:
//
//	Quotes:
//	  - name: acc
//	    url: https://acc.quotes.example.com
//	  - name: prod
//	    url: https://quotes.example.com
//
// Document order is kept. Items missing a name or url are skipped. A document
// of any other shape is rejected and the error is also returned by Build.
func (b *Builder) AddYAML(data []byte) (*Builder, error) {
	defs, err := parseYAML(data)
	if err != nil {
		err = errors.Join(ErrInvalidYAML, err)
		b.fail(err)
		return b, err
	}

	for _, def := range defs {
		b.add(def.name, def.environment, def.url)
	}
	return b, nil
}

func parseYAML(data []byte) ([]tabularRow, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of api names", root.Line)
	}

	var rows []tabularRow
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := strings.TrimSpace(root.Content[i].Value)
		if name == "" {
			continue
		}

		var items []yamlEnvironment
		if err := root.Content[i+1].Decode(&items); err != nil {
			return nil, fmt.Errorf("api %q: %w", name, err)
		}
		for _, item := range items {
			env, u := strings.TrimSpace(item.Name), strings.TrimSpace(item.URL)
			if env == "" || u == "" {
				continue
			}
			rows = append(rows, tabularRow{name: name, environment: env, url: u})
		}
	}
	return rows, nil
}
