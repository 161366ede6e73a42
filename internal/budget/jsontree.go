package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// The truncation algorithm needs two things encoding/json's generic
// types cannot give it: the original field order of objects, and cheap
// re-serialization of arbitrary prefixes. This small ordered tree
// provides both. Input always comes from json.Marshal, so literals keep
// their exact original encoding (json.Number for numbers, re-marshal
// for strings) and round-trip byte-identically.

type kind int

const (
	kindLiteral kind = iota
	kindObject
	kindArray
)

type value struct {
	kind   kind
	fields []field // kindObject
	items  []value // kindArray
	raw    string  // kindLiteral, exact encoding
}

type field struct {
	name string
	val  value
}

func parseDocument(data []byte) (value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return value{}, fmt.Errorf("budget: parse payload: %w", err)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (value, error) {
	tok, err := dec.Token()
	if err != nil {
		return value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := value{kind: kindObject}
			for dec.More() {
				nameTok, err := dec.Token()
				if err != nil {
					return value{}, err
				}
				name, ok := nameTok.(string)
				if !ok {
					return value{}, fmt.Errorf("object key is not a string: %v", nameTok)
				}
				fv, err := parseValue(dec)
				if err != nil {
					return value{}, err
				}
				v.fields = append(v.fields, field{name: name, val: fv})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return value{}, err
			}
			return v, nil
		case '[':
			v := value{kind: kindArray}
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return value{}, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return value{}, err
			}
			return v, nil
		}
		return value{}, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		return value{kind: kindLiteral, raw: t.String()}, nil
	case string:
		encoded, err := json.Marshal(t)
		if err != nil {
			return value{}, err
		}
		return value{kind: kindLiteral, raw: string(encoded)}, nil
	case bool:
		if t {
			return value{kind: kindLiteral, raw: "true"}, nil
		}
		return value{kind: kindLiteral, raw: "false"}, nil
	case nil:
		return value{kind: kindLiteral, raw: "null"}, nil
	}
	return value{}, fmt.Errorf("unexpected token %v", tok)
}

func serialize(v value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v value) {
	switch v.kind {
	case kindObject:
		b.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			name, _ := json.Marshal(f.name)
			b.Write(name)
			b.WriteByte(':')
			writeValue(b, f.val)
		}
		b.WriteByte('}')
	case kindArray:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	default:
		b.WriteString(v.raw)
	}
}

func prefix(v value, k int) value {
	return value{kind: kindArray, items: v.items[:k]}
}
