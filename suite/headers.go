package suite

import (
	"fmt"

	"github.com/launchdarkly/http-selftest/httpwire"

	"gopkg.in/yaml.v3"
)

// HeaderList is an ordered list of headers. In YAML it can be written as a mapping, whose order
// is kept, or as a sequence of name/value objects, which also allows repeating a name:
//
//	headers:
//	  - {name: Accept, value: text/plain}
//	  - {name: Accept, value: text/html}
type HeaderList []httpwire.Header

func (h *HeaderList) UnmarshalYAML(node *yaml.Node) error {
	var ret HeaderList
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			var name, value string
			if err := node.Content[i].Decode(&name); err != nil {
				return err
			}
			if err := node.Content[i+1].Decode(&value); err != nil {
				return err
			}
			ret = append(ret, httpwire.Header{Name: name, Value: value})
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var pair struct {
				Name  string `yaml:"name"`
				Value string `yaml:"value"`
			}
			if err := item.Decode(&pair); err != nil {
				return err
			}
			if pair.Name == "" {
				return fmt.Errorf("line %d: header name is required", item.Line)
			}
			ret = append(ret, httpwire.Header{Name: pair.Name, Value: pair.Value})
		}
	default:
		return fmt.Errorf("line %d: headers must be a mapping or a list", node.Line)
	}
	*h = ret
	return nil
}
