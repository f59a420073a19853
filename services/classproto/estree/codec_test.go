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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// @propertiesToPrototype('model')
// export class Test extends Base { static count = 1; defaults = {}; render() {} }
const exportedClassJSON = `{
  "type": "Program",
  "sourceType": "module",
  "start": 0,
  "end": 120,
  "body": [
    {
      "type": "ExportNamedDeclaration",
      "start": 0,
      "end": 120,
      "declaration": {
        "type": "ClassDeclaration",
        "start": 7,
        "end": 120,
        "decorators": [
          {
            "type": "Decorator",
            "expression": {
              "type": "CallExpression",
              "callee": {"type": "Identifier", "name": "propertiesToPrototype"},
              "arguments": [{"type": "Literal", "value": "model", "raw": "'model'"}]
            }
          }
        ],
        "id": {"type": "Identifier", "name": "Test"},
        "superClass": {"type": "Identifier", "name": "Base"},
        "body": {
          "type": "ClassBody",
          "body": [
            {
              "type": "PropertyDefinition",
              "key": {"type": "Identifier", "name": "count"},
              "value": {"type": "Literal", "value": 1, "raw": "1"},
              "computed": false,
              "static": true,
              "decorators": []
            },
            {
              "type": "PropertyDefinition",
              "start": 60,
              "end": 73,
              "loc": {"start": {"line": 3, "column": 2}, "end": {"line": 3, "column": 15}},
              "key": {"type": "Identifier", "name": "defaults"},
              "value": {"type": "ObjectExpression", "properties": []},
              "computed": false,
              "static": false,
              "decorators": []
            },
            {
              "type": "MethodDefinition",
              "key": {"type": "Identifier", "name": "render"},
              "value": {
                "type": "FunctionExpression",
                "id": null,
                "params": [],
                "body": {"type": "BlockStatement", "body": []},
                "async": false,
                "generator": false
              },
              "kind": "method",
              "computed": false,
              "static": false
            }
          ]
        }
      },
      "specifiers": [],
      "source": null
    },
    {
      "type": "VariableDeclaration",
      "kind": "const",
      "declarations": [
        {
          "type": "VariableDeclarator",
          "id": {"type": "Identifier", "name": "x"},
          "init": {"type": "Literal", "value": 10000000000000000001, "raw": "10000000000000000001"}
        }
      ]
    }
  ]
}`

func TestDecode_ExportedClass(t *testing.T) {
	prog, err := Decode([]byte(exportedClassJSON))
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)

	assert.Equal(t, &Span{Start: 0, End: 120}, prog.Span)
	assert.JSONEq(t, `"module"`, string(prog.Extra["sourceType"]))

	decl, ok := ClassOf(prog.Body[0])
	require.True(t, ok)
	assert.Equal(t, "Test", decl.Name())
	assert.True(t, IsIdentifier(decl.SuperClass, "Base"))
	require.Len(t, decl.Decorators, 1)

	call, ok := decl.Decorators[0].Expression.(*CallExpression)
	require.True(t, ok)
	assert.True(t, IsIdentifier(call.Callee, "propertiesToPrototype"))
	assert.True(t, IsStringLiteral(call.Arguments[0], "model"))

	require.Len(t, decl.Body.Body, 3)
	count := decl.Body.Body[0].(*PropertyDefinition)
	assert.True(t, count.Static)
	assert.Equal(t, json.Number("1"), count.Value.(*Literal).Value)
	assert.NotNil(t, count.Decorators)
	assert.Empty(t, count.Decorators)

	defaults := decl.Body.Body[1].(*PropertyDefinition)
	assert.Equal(t, &Span{Start: 60, End: 73}, defaults.Span)
	assert.Contains(t, defaults.Extra, "loc")

	method := decl.Body.Body[2].(*MethodDefinition)
	assert.Equal(t, "method", method.Kind)
	assert.Nil(t, method.Decorators)

	raw, ok := prog.Body[1].(*Raw)
	require.True(t, ok)
	assert.Equal(t, "VariableDeclaration", raw.Type())
}

func TestEncode_RoundTripIsLossless(t *testing.T) {
	prog, err := Decode([]byte(exportedClassJSON))
	require.NoError(t, err)

	out, err := Encode(prog)
	require.NoError(t, err)
	assert.JSONEq(t, exportedClassJSON, string(out))
	assert.Contains(t, string(out), "10000000000000000001")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "null root", input: `null`, want: ErrNotProgram},
		{name: "non program root", input: `{"type": "Identifier", "name": "x"}`, want: ErrNotProgram},
		{name: "not an object", input: `[1, 2]`, want: ErrMalformedNode},
		{name: "body is not a list", input: `{"type": "Program", "body": {}}`, want: ErrMalformedNode},
		{
			name:  "class id is not an identifier",
			input: `{"type": "Program", "body": [{"type": "ClassDeclaration", "id": {"type": "Literal", "value": 1}, "body": null}]}`,
			want:  ErrMalformedNode,
		},
		{
			name:  "decorator list holds a non decorator",
			input: `{"type": "Program", "body": [{"type": "ClassDeclaration", "id": null, "decorators": [{"type": "Identifier", "name": "x"}]}]}`,
			want:  ErrMalformedNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilders_EncodeESTreeShapes(t *testing.T) {
	stmt := NewExpressionStatement(
		NewCallExpression(
			NewMemberExpression(NewIdentifier("Object"), NewIdentifier("assign")),
			NewMemberExpression(NewIdentifier("Test"), NewIdentifier("prototype")),
			NewObjectExpression(NewProperty(NewIdentifier("items"), NewArrayExpression(NewLiteral("a")))),
		),
	)
	prog := &Program{Body: []Node{stmt}}

	out, err := Encode(prog)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "type": "Program",
	  "body": [{
	    "type": "ExpressionStatement",
	    "expression": {
	      "type": "CallExpression",
	      "callee": {
	        "type": "MemberExpression", "computed": false,
	        "object": {"type": "Identifier", "name": "Object"},
	        "property": {"type": "Identifier", "name": "assign"}
	      },
	      "arguments": [
	        {
	          "type": "MemberExpression", "computed": false,
	          "object": {"type": "Identifier", "name": "Test"},
	          "property": {"type": "Identifier", "name": "prototype"}
	        },
	        {
	          "type": "ObjectExpression",
	          "properties": [{
	            "type": "Property", "kind": "init",
	            "computed": false, "method": false, "shorthand": false,
	            "key": {"type": "Identifier", "name": "items"},
	            "value": {"type": "ArrayExpression", "elements": [{"type": "Literal", "value": "a"}]}
	          }]
	        }
	      ]
	    }
	  }]
	}`, string(out))
}

func TestBuilders_Getter(t *testing.T) {
	getter := NewMethodDefinition(
		NewIdentifier("shared"),
		NewFunctionExpression(nil, nil, NewBlockStatement(NewReturnStatement(NewArrayExpression()))),
		"get",
	)

	out, err := json.Marshal(getter)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "type": "MethodDefinition", "kind": "get", "computed": false, "static": false,
	  "key": {"type": "Identifier", "name": "shared"},
	  "value": {
	    "type": "FunctionExpression", "id": null, "params": [],
	    "async": false, "generator": false,
	    "body": {"type": "BlockStatement", "body": [
	      {"type": "ReturnStatement", "argument": {"type": "ArrayExpression", "elements": []}}
	    ]}
	  }
	}`, string(out))
}
