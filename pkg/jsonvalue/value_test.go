package jsonvalue_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/pkg/jsonvalue"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  jsonvalue.Kind
	}{
		{`null`, jsonvalue.KindNull},
		{`true`, jsonvalue.KindBool},
		{`-1.5e3`, jsonvalue.KindNumber},
		{`"x"`, jsonvalue.KindString},
		{`[1,"a",null]`, jsonvalue.KindArray},
		{`{"a":{"b":[]}}`, jsonvalue.KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := jsonvalue.Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{``, `{`, `[1,]`, `{"a" 1}`, `1 2`, `nul`} {
		t.Run(input, func(t *testing.T) {
			_, err := jsonvalue.Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalKeepsOrderAndLiterals(t *testing.T) {
	input := `{"z":1,"a":1.50,"big":123456789012345678901234567890,"s":"<a&b>","n":null,"l":[true,{}]}`
	v := jsonvalue.MustParse(input)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, input, string(out))

	// encoding/json re-escapes HTML characters in Marshaler output.
	out, err = json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"a":1.50`)
	assert.Contains(t, string(out), `\u003ca\u0026b\u003e`)
}

func TestMarshalIndent(t *testing.T) {
	v := jsonvalue.MustParse(`{"id":"p1","tags":["a","b"],"empty":{}}`)
	out, err := jsonvalue.MarshalIndent(v)
	require.NoError(t, err)
	want := `{
  "id": "p1",
  "tags": [
    "a",
    "b"
  ],
  "empty": {}
}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("MarshalIndent mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var wrapper struct {
		Records []jsonvalue.Value `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"records":[{"b":1,"a":2},"x"]}`), &wrapper))
	require.Len(t, wrapper.Records, 2)

	obj, ok := wrapper.Records[0].AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	s, ok := wrapper.Records[1].AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestKeyIsCanonical(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"nested key order", `{"o":{"x":[1,{"p":1,"q":2}]}}`, `{"o":{"x":[1,{"q":2,"p":1}]}}`, true},
		{"integer and float", `1`, `1.0`, true},
		{"exponent", `100`, `1e2`, true},
		{"array order matters", `[1,2]`, `[2,1]`, false},
		{"string vs number", `"1"`, `1`, false},
		{"null vs empty string", `null`, `""`, false},
		{"false vs 0", `false`, `0`, false},
		{"empty containers", `[]`, `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := jsonvalue.MustParse(tt.a)
			b := jsonvalue.MustParse(tt.b)
			assert.Equal(t, tt.equal, a.Equal(b))
			assert.Equal(t, tt.equal, a.Key() == b.Key())
		})
	}
}

func TestEmptiness(t *testing.T) {
	tests := []struct {
		input string
		empty bool
		blank bool
	}{
		{`null`, true, true},
		{`""`, true, true},
		{`"  "`, false, true},
		{`"x"`, false, false},
		{`0`, false, false},
		{`false`, false, false},
		{`[]`, false, false},
		{`{}`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := jsonvalue.MustParse(tt.input)
			assert.Equal(t, tt.empty, v.IsEmpty())
			assert.Equal(t, tt.blank, v.IsBlank())
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "", jsonvalue.Null().Text())
	assert.Equal(t, "true", jsonvalue.Bool(true).Text())
	assert.Equal(t, "42", jsonvalue.Int(42).Text())
	assert.Equal(t, "1.5", jsonvalue.Float(1.5).Text())
	assert.Equal(t, "abc", jsonvalue.String("abc").Text())
	assert.Equal(t, `{"a":1,"b":2}`, jsonvalue.MustParse(`{"b":2,"a":1}`).Text())
}

func TestCloneIsDeep(t *testing.T) {
	orig := jsonvalue.MustParse(`{"repos":[{"url":"u1"}]}`)
	clone := orig.Clone()

	obj, _ := clone.AsObject()
	obj.Set("extra", jsonvalue.Bool(true))

	origObj, _ := orig.AsObject()
	assert.False(t, origObj.Has("extra"))
	assert.Equal(t, 1, origObj.Len())
}

func TestObject(t *testing.T) {
	obj := jsonvalue.NewObject()
	obj.Set("b", jsonvalue.Int(1))
	obj.Set("a", jsonvalue.Int(2))
	obj.Set("b", jsonvalue.Int(3))
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	v, ok := obj.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", v.Text())

	obj.Delete("b")
	obj.Delete("missing")
	assert.Equal(t, []string{"a"}, obj.Keys())
	assert.False(t, obj.Has("b"))

	var visited []string
	obj.Set("c", jsonvalue.Null())
	obj.Set("d", jsonvalue.Null())
	obj.Range(func(key string, _ jsonvalue.Value) bool {
		visited = append(visited, key)
		return key != "c"
	})
	assert.Equal(t, []string{"a", "c"}, visited)

	var nilObj *jsonvalue.Object
	assert.Equal(t, 0, nilObj.Len())
	_, ok = nilObj.Get("x")
	assert.False(t, ok)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, 0, jsonvalue.Array().Len())
	out, err := json.Marshal(jsonvalue.Array())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))

	out, err = json.Marshal(jsonvalue.FromObject(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	f, ok := jsonvalue.Number("2.5").AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 2.5, f, 0)

	_, ok = jsonvalue.String("2.5").AsFloat()
	assert.False(t, ok)

	assert.Equal(t, "object", jsonvalue.KindObject.String())
	assert.Panics(t, func() { jsonvalue.MustParse("{") })
}
