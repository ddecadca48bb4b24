package typedjson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// ReadYAML reads every document of a YAML stream as a JSON value. Mappings
// become *Object in document order, so undeclared fields are reported in the
// order they were written. Tagged !!binary scalars become the ISO-8859-1
// string of their bytes, which is the JSON form of bytes and fixed values.
func ReadYAML(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var docs []any
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, singleIssue(CodeParseError, err)
		}
		v, err := yamlValue(&node, Path{})
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
	return docs, nil
}

// DecodeYAMLBytes decodes the single YAML document in data under t.
func DecodeYAMLBytes(data []byte, t Type, opts ...Options) (any, error) {
	docs, err := ReadYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, singleIssue(CodeParseError, fmt.Errorf("expected one YAML document, got %d", len(docs)))
	}
	return DecodeFromJSON(docs[0], t, opts...)
}

func yamlValue(n *yaml.Node, path Path) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0], path)
	case yaml.AliasNode:
		return yamlValue(n.Alias, path)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlValue(c, path.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, yamlIssue(path, k, "mapping key must be a scalar")
			}
			val, err := yamlValue(v, path.Field(k.Value))
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n, path)
	default:
		return nil, yamlIssue(path, n, "unsupported node")
	}
}

func yamlScalar(n *yaml.Node, path Path) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlIssue(path, n, err.Error())
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, yamlIssue(path, n, err.Error())
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, yamlIssue(path, n, err.Error())
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, yamlIssue(path, n, "non-finite number")
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case "!!binary":
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, yamlIssue(path, n, err.Error())
		}
		s, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		return string(s), nil
	default:
		return n.Value, nil
	}
}

func yamlIssue(path Path, n *yaml.Node, msg string) error {
	return AppendIssues(nil, Issue{
		Path:     path.Pointer(),
		Location: path,
		Code:     CodeParseError,
		Message:  fmt.Sprintf("line %d: %s", n.Line, msg),
	})
}
