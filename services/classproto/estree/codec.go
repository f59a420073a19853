// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package estree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNotProgram is returned by Decode when the root object is not a Program.
	ErrNotProgram = errors.New("estree: root node is not a Program")

	// ErrMalformedNode is returned when a node is not a JSON object or a child
	// has a shape its parent cannot hold.
	ErrMalformedNode = errors.New("estree: malformed node")
)

// =============================================================================
// Decoding
// =============================================================================

// Decode parses an ESTree JSON document into a Program.
//
// Description:
//
//	Interpreted node kinds become typed nodes; every other kind becomes a
//	*Raw that keeps its original bytes. Keys an interpreted node does not
//	model are kept in Base.Extra.
//
// Inputs:
//
//	data - ESTree JSON as emitted by an ESTree-compatible parser.
//
// Outputs:
//
//	*Program - The decoded tree. Never nil on success.
//	error - ErrNotProgram or ErrMalformedNode (wrapped) on failure.
func Decode(data []byte) (*Program, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	prog, ok := n.(*Program)
	if !ok {
		kind := "null"
		if n != nil {
			kind = n.Type()
		}
		return nil, fmt.Errorf("%w: got %s", ErrNotProgram, kind)
	}
	return prog, nil
}

// Encode renders a Program back to ESTree JSON. Object keys come out sorted.
func Encode(p *Program) ([]byte, error) {
	return json.Marshal(p)
}

// EncodeIndent is Encode with json.MarshalIndent formatting.
func EncodeIndent(p *Program, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(p, prefix, indent)
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if isNull(raw) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}

	d := &objectDecoder{fields: fields}
	kind := d.str("type")

	var n Node
	switch kind {
	case KindProgram:
		n = &Program{Body: d.nodes("body")}
	case KindExpressionStatement:
		n = &ExpressionStatement{Expression: d.node("expression")}
	case KindBlockStatement:
		n = &BlockStatement{Body: d.nodes("body")}
	case KindReturnStatement:
		n = &ReturnStatement{Argument: d.node("argument")}
	case KindExportDefaultDeclaration:
		n = &ExportDefaultDeclaration{Declaration: d.node("declaration")}
	case KindExportNamedDeclaration:
		n = &ExportNamedDeclaration{
			Declaration: d.node("declaration"),
			Specifiers:  d.nodes("specifiers"),
			Source:      d.node("source"),
		}
	case KindClassDeclaration:
		n = &ClassDeclaration{
			ID:         decodeAs[*Identifier](d, "id"),
			SuperClass: d.node("superClass"),
			Body:       decodeAs[*ClassBody](d, "body"),
			Decorators: d.decorators("decorators"),
		}
	case KindClassBody:
		n = &ClassBody{Body: d.nodes("body")}
	case KindDecorator:
		n = &Decorator{Expression: d.node("expression")}
	case KindPropertyDefinition:
		n = &PropertyDefinition{
			Key:        d.node("key"),
			Value:      d.node("value"),
			Computed:   d.boolean("computed"),
			Static:     d.boolean("static"),
			Decorators: d.decorators("decorators"),
		}
	case KindMethodDefinition:
		n = &MethodDefinition{
			Key:        d.node("key"),
			Value:      decodeAs[*FunctionExpression](d, "value"),
			Kind:       d.str("kind"),
			Computed:   d.boolean("computed"),
			Static:     d.boolean("static"),
			Decorators: d.decorators("decorators"),
		}
	case KindIdentifier:
		n = &Identifier{Name: d.str("name")}
	case KindLiteral:
		n = &Literal{Value: d.value("value"), Raw: d.str("raw")}
	case KindMemberExpression:
		n = &MemberExpression{
			Object:   d.node("object"),
			Property: d.node("property"),
			Computed: d.boolean("computed"),
		}
	case KindCallExpression:
		n = &CallExpression{Callee: d.node("callee"), Arguments: d.nodes("arguments")}
	case KindObjectExpression:
		n = &ObjectExpression{Properties: d.nodes("properties")}
	case KindArrayExpression:
		n = &ArrayExpression{Elements: d.nodes("elements")}
	case KindProperty:
		n = &Property{
			Key:       d.node("key"),
			Value:     d.node("value"),
			Kind:      d.str("kind"),
			Computed:  d.boolean("computed"),
			Method:    d.boolean("method"),
			Shorthand: d.boolean("shorthand"),
		}
	case KindFunctionExpression:
		n = &FunctionExpression{
			ID:        decodeAs[*Identifier](d, "id"),
			Params:    d.nodes("params"),
			Body:      decodeAs[*BlockStatement](d, "body"),
			Async:     d.boolean("async"),
			Generator: d.boolean("generator"),
		}
	default:
		r := &Raw{Kind: kind, Data: append(json.RawMessage(nil), raw...)}
		r.Span = d.span()
		return r, nil
	}

	if d.err != nil {
		return nil, fmt.Errorf("%s: %w", kind, d.err)
	}
	d.finish(n.meta())
	return n, nil
}

// objectDecoder consumes keys from one JSON object. The first failure sticks
// in err; later calls become no-ops.
type objectDecoder struct {
	fields map[string]json.RawMessage
	err    error
}

func (d *objectDecoder) take(key string) (json.RawMessage, bool) {
	if d.err != nil {
		return nil, false
	}
	raw, ok := d.fields[key]
	if ok {
		delete(d.fields, key)
	}
	return raw, ok
}

func (d *objectDecoder) fail(key string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("field %q: %w", key, err)
	}
}

func (d *objectDecoder) node(key string) Node {
	raw, ok := d.take(key)
	if !ok {
		return nil
	}
	n, err := decodeNode(raw)
	if err != nil {
		d.fail(key, err)
		return nil
	}
	return n
}

// nodes returns nil when key is absent or null and a non-nil slice otherwise.
func (d *objectDecoder) nodes(key string) []Node {
	raw, ok := d.take(key)
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(key, fmt.Errorf("%w: %v", ErrMalformedNode, err))
		return nil
	}
	out := make([]Node, 0, len(items))
	for i, item := range items {
		n, err := decodeNode(item)
		if err != nil {
			d.fail(fmt.Sprintf("%s[%d]", key, i), err)
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (d *objectDecoder) decorators(key string) []*Decorator {
	list := d.nodes(key)
	if list == nil {
		return nil
	}
	out := make([]*Decorator, 0, len(list))
	for i, n := range list {
		dec, ok := n.(*Decorator)
		if !ok {
			d.fail(fmt.Sprintf("%s[%d]", key, i), unexpected(KindDecorator, n))
			return nil
		}
		out = append(out, dec)
	}
	return out
}

func decodeAs[T Node](d *objectDecoder, key string) T {
	var zero T
	n := d.node(key)
	if n == nil {
		return zero
	}
	typed, ok := n.(T)
	if !ok {
		d.fail(key, unexpected(fmt.Sprintf("%T", zero), n))
		return zero
	}
	return typed
}

func (d *objectDecoder) str(key string) string {
	raw, ok := d.take(key)
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(key, err)
	}
	return s
}

func (d *objectDecoder) boolean(key string) bool {
	raw, ok := d.take(key)
	if !ok || isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		d.fail(key, err)
	}
	return b
}

// value decodes a literal value keeping numbers as json.Number so their
// text survives re-encoding.
func (d *objectDecoder) value(key string) any {
	raw, ok := d.take(key)
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		d.fail(key, err)
	}
	return v
}

// span consumes start/end only when both are integers.
func (d *objectDecoder) span() *Span {
	startRaw, hasStart := d.fields["start"]
	endRaw, hasEnd := d.fields["end"]
	if !hasStart || !hasEnd {
		return nil
	}
	var s Span
	if json.Unmarshal(startRaw, &s.Start) != nil || json.Unmarshal(endRaw, &s.End) != nil {
		return nil
	}
	delete(d.fields, "start")
	delete(d.fields, "end")
	return &s
}

func (d *objectDecoder) finish(b *Base) {
	b.Span = d.span()
	if len(d.fields) > 0 {
		b.Extra = d.fields
	}
}

func unexpected(want string, got Node) error {
	return fmt.Errorf("%w: want %s, got %s", ErrMalformedNode, want, got.Type())
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// =============================================================================
// Encoding
// =============================================================================

func encodeObject(kind string, b *Base, fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+len(fields)+3)
	for k, v := range b.Extra {
		out[k] = v
	}
	if b.Span != nil {
		out["start"] = b.Span.Start
		out["end"] = b.Span.End
	}
	for k, v := range fields {
		out[k] = v
	}
	out["type"] = kind
	return json.Marshal(out)
}

func list(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}

func withDecorators(fields map[string]any, decorators []*Decorator) map[string]any {
	if decorators != nil {
		fields["decorators"] = decorators
	}
	return fields
}

func (n *Program) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"body": list(n.Body)})
}

func (n *ExpressionStatement) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"expression": n.Expression})
}

func (n *BlockStatement) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"body": list(n.Body)})
}

func (n *ReturnStatement) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"argument": n.Argument})
}

func (n *ExportDefaultDeclaration) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"declaration": n.Declaration})
}

func (n *ExportNamedDeclaration) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{
		"declaration": n.Declaration,
		"specifiers":  list(n.Specifiers),
		"source":      n.Source,
	})
}

func (n *ClassDeclaration) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, withDecorators(map[string]any{
		"id":         n.ID,
		"superClass": n.SuperClass,
		"body":       n.Body,
	}, n.Decorators))
}

func (n *ClassBody) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"body": list(n.Body)})
}

func (n *Decorator) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"expression": n.Expression})
}

func (n *PropertyDefinition) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, withDecorators(map[string]any{
		"key":      n.Key,
		"value":    n.Value,
		"computed": n.Computed,
		"static":   n.Static,
	}, n.Decorators))
}

func (n *MethodDefinition) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, withDecorators(map[string]any{
		"key":      n.Key,
		"value":    n.Value,
		"kind":     n.Kind,
		"computed": n.Computed,
		"static":   n.Static,
	}, n.Decorators))
}

func (n *Identifier) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"name": n.Name})
}

func (n *Literal) MarshalJSON() ([]byte, error) {
	fields := map[string]any{"value": n.Value}
	if n.Raw != "" {
		fields["raw"] = n.Raw
	}
	return encodeObject(n.Type(), &n.Base, fields)
}

func (n *MemberExpression) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{
		"object":   n.Object,
		"property": n.Property,
		"computed": n.Computed,
	})
}

func (n *CallExpression) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{
		"callee":    n.Callee,
		"arguments": list(n.Arguments),
	})
}

func (n *ObjectExpression) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"properties": list(n.Properties)})
}

func (n *ArrayExpression) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{"elements": list(n.Elements)})
}

func (n *Property) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{
		"key":       n.Key,
		"value":     n.Value,
		"kind":      n.Kind,
		"computed":  n.Computed,
		"method":    n.Method,
		"shorthand": n.Shorthand,
	})
}

func (n *FunctionExpression) MarshalJSON() ([]byte, error) {
	return encodeObject(n.Type(), &n.Base, map[string]any{
		"id":        n.ID,
		"params":    list(n.Params),
		"body":      n.Body,
		"async":     n.Async,
		"generator": n.Generator,
	})
}

func (n *Raw) MarshalJSON() ([]byte, error) {
	if len(n.Data) == 0 {
		return []byte("null"), nil
	}
	return n.Data, nil
}
