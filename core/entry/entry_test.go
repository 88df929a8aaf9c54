package entry_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/cloudrest/core/entry"
)

type node struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	State string   `json:"state"`
	IPs   []string `json:"public_ips"`
}

type lookupDriver struct {
	nodes map[string]*node
}

var errNoNode = errors.New("node does not exist")

func nodeType() entry.ObjectType {
	return entry.NewObjectType[node]("Node",
		[]string{"id", "name", "state", "public_ips"},
		func(ctx context.Context, fields map[string]any, driver any) (any, error) {
			d, ok := driver.(*lookupDriver)
			if !ok {
				return nil, errors.New("no driver available")
			}
			n, ok := d.nodes[fields["node_id"].(string)]
			if !ok {
				return nil, errNoNode
			}
			return n, nil
		},
		entry.Field{Name: "node_id", Tag: "C{str}", Description: "ID of the node which should be used", Required: true},
	)
}

type point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func pointType() entry.ObjectType {
	return entry.NewObjectType[point]("Point", []string{"x", "y"},
		func(_ context.Context, fields map[string]any, _ any) (any, error) {
			return &point{X: fields["x"].(int64), Y: fields["y"].(int64)}, nil
		},
		entry.Field{Name: "x", Tag: "integer", Description: "x coordinate", Required: true},
		entry.Field{Name: "y", Tag: "integer", Description: "y coordinate", Required: true},
	)
}

type recordType string

func newRegistry(t *testing.T) *entry.Registry {
	t.Helper()
	r := entry.New()
	require.NoError(t, r.RegisterObject(nodeType()))
	require.NoError(t, r.RegisterObject(pointType()))
	require.NoError(t, r.RegisterObject(entry.SingleField[recordType]("RecordType",
		entry.Field{Name: "record_type", Tag: "string", Description: "DNS record type", Required: true})))
	r.Freeze()
	return r
}

func decode(t *testing.T, body string) entry.Document {
	t.Helper()
	var doc entry.Document
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return doc
}

func TestResolve_Variants(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		tag     string
		wantTag string
		variant any
	}{
		{"C{str}", "string", &entry.Scalar{}},
		{"int", "integer", &entry.Scalar{}},
		{"C{dict}", "mapping", &entry.Scalar{}},
		{"None", "none", &entry.Scalar{}},
		{"L{Node}", "Node", &entry.Object{}},
		{"L{Node} or C{str}", "Node or string", &entry.Union{}},
		{"C{list} of L{Node}", "list of Node", &entry.List{}},
		{"list of   int", "list of integer", &entry.List{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			e, err := r.Resolve(tt.tag, entry.Spec{Name: "arg", Description: "d", Required: true})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, e.Tag())
			assert.IsType(t, tt.variant, e)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	r := newRegistry(t)
	for _, tag := range []string{"L{Unknown}", "set of int", "int or Unknown", ""} {
		_, err := r.Resolve(tag, entry.Spec{Name: "a"})
		assert.ErrorIs(t, err, entry.ErrUnresolvedTag, tag)
	}
}

func TestRegistry_Frozen(t *testing.T) {
	r := newRegistry(t)
	assert.ErrorIs(t, r.RegisterScalar("uuid", "string", nil), entry.ErrRegistryFrozen)
	assert.ErrorIs(t, r.RegisterContainer("set"), entry.ErrRegistryFrozen)
	assert.ErrorIs(t, r.RegisterObject(pointType()), entry.ErrRegistryFrozen)
}

func TestRegistry_RejectsInvalidObjects(t *testing.T) {
	r := entry.New()
	require.NoError(t, r.RegisterObject(pointType()))
	assert.ErrorIs(t, r.RegisterObject(pointType()), entry.ErrDuplicateTag)

	bad := pointType()
	bad.Name = "BadPoint"
	bad.RenderAttributes = []string{"z"}
	assert.ErrorIs(t, r.RegisterObject(bad), entry.ErrInvalidObject)

	noCtor := pointType()
	noCtor.Name = "NoCtor"
	noCtor.Construct = nil
	assert.ErrorIs(t, r.RegisterObject(noCtor), entry.ErrInvalidObject)
}

func TestScalar_RequiredField(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("C{str}", entry.Spec{Name: "zone_id", Description: "ID of the zone (required)", Required: true})
	require.NoError(t, err)

	assert.NoError(t, e.Validate(decode(t, `{"zone_id": "123"}`)))

	var verr *entry.ValidationError
	require.ErrorAs(t, e.Validate(decode(t, `{"zone_id": 123}`)), &verr)
	assert.Equal(t, "zone_id", verr.Name)

	var merr *entry.MissingArgumentsError
	require.ErrorAs(t, e.Validate(entry.Document{}), &merr)
	assert.Equal(t, [][]string{{"zone_id"}}, merr.Alternatives)

	require.ErrorAs(t, e.Validate(entry.Document{"zone_id": nil}), &merr)
}

func TestScalar_Predicates(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		tag   string
		body  string
		valid bool
	}{
		{"integer", `{"v": 5}`, true},
		{"integer", `{"v": 5.5}`, false},
		{"integer", `{"v": "5"}`, false},
		{"float", `{"v": 5}`, true},
		{"float", `{"v": 5.5}`, true},
		{"float", `{"v": true}`, false},
		{"boolean", `{"v": false}`, true},
		{"boolean", `{"v": 0}`, false},
		{"mapping", `{"v": {"a": 1}}`, true},
		{"mapping", `{"v": [1]}`, false},
		{"none", `{"v": null}`, true},
		{"none", `{"v": 1}`, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.tag, tt.body), func(t *testing.T) {
			e, err := r.Resolve(tt.tag, entry.Spec{Name: "v", Description: "d", Required: true})
			require.NoError(t, err)
			err = e.Validate(decode(t, tt.body))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				var verr *entry.ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestScalar_FromWireNormalizesNumbers(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("int", entry.Spec{Name: "port", Description: "d"})
	require.NoError(t, err)

	v, err := e.FromWire(context.Background(), entry.Document{"port": json.Number("8080")}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(8080), v)

	v, err = e.FromWire(context.Background(), entry.Document{"port": float64(80)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(80), v)
}

func TestScalar_IntegerRange(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("int", entry.Spec{Name: "n", Description: "d", Required: true})
	require.NoError(t, err)

	for _, v := range []any{float64(1e19), float64(-1e19), float64(1 << 63), json.Number("9223372036854775808")} {
		var verr *entry.ValidationError
		assert.ErrorAs(t, e.Validate(entry.Document{"n": v}), &verr, "%v", v)
	}

	v, err := e.FromWire(context.Background(), entry.Document{"n": float64(-(1 << 63))}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v)
}

func TestScalar_ToWire(t *testing.T) {
	r := newRegistry(t)

	s, err := r.Resolve("string", entry.Spec{Name: "result", Description: "d", Required: true})
	require.NoError(t, err)
	out, err := s.ToWire("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	_, err = s.ToWire(42)
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)

	b, err := r.Resolve("bool", entry.Spec{Name: "result", Description: "d", Required: true})
	require.NoError(t, err)
	_, err = b.ToWire("true")
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)

	n, err := r.Resolve("None", entry.Spec{Name: "result", Description: "d"})
	require.NoError(t, err)
	out, err = n.ToWire(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDefaultSubstitution(t *testing.T) {
	r := newRegistry(t)

	withDefault, err := r.Resolve("int", entry.Spec{Name: "ttl", Description: "d", Default: int64(3600), HasDefault: true, Required: true})
	require.NoError(t, err)
	assert.False(t, withDefault.Required(), "a default makes the entry optional")
	require.NoError(t, withDefault.Validate(entry.Document{}))
	v, err := withDefault.FromWire(context.Background(), entry.Document{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), v)

	without, err := r.Resolve("int", entry.Spec{Name: "ttl", Description: "d", Required: true})
	require.NoError(t, err)
	var merr *entry.MissingArgumentsError
	assert.ErrorAs(t, without.Validate(entry.Document{}), &merr)
}

func TestUnion_DefaultedFallback(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("string or mapping", entry.Spec{
		Name: "attr", Description: "d", Default: "default_value", HasDefault: true,
	})
	require.NoError(t, err)

	doc := decode(t, `{"attr": "123"}`)
	require.NoError(t, e.Validate(doc))
	v, err := e.FromWire(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "123", v)

	require.NoError(t, e.Validate(entry.Document{}))
	v, err = e.FromWire(context.Background(), entry.Document{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "default_value", v)

	var verr *entry.ValidationError
	assert.ErrorAs(t, e.Validate(decode(t, `{"attr": 555}`)), &verr)
}

func TestUnion_Exclusivity(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("L{Node} or L{Point}", entry.Spec{Name: "target", Description: "d", Required: true})
	require.NoError(t, err)

	var tooMany *entry.TooManyArgumentsError
	require.ErrorAs(t, e.Validate(decode(t, `{"node_id": "1", "x": 1, "y": 2}`)), &tooMany)
	assert.Equal(t, [][]string{{"node_id"}, {"x", "y"}}, tooMany.Alternatives)

	var merr *entry.MissingArgumentsError
	require.ErrorAs(t, e.Validate(entry.Document{}), &merr)
	assert.Equal(t, [][]string{{"node_id"}, {"x", "y"}}, merr.Alternatives)
	assert.Contains(t, merr.Error(), "node_id or x, y")

	doc := decode(t, `{"x": 1, "y": 2}`)
	require.NoError(t, e.Validate(doc))
	v, err := e.FromWire(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, v)

	// A partially supplied alternative does not match.
	require.NoError(t, e.Validate(decode(t, `{"node_id": "1", "x": 1}`)))
}

func TestUnion_ToWire(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("L{Point} or C{str}", entry.Spec{Name: "result", Description: "d", Required: true})
	require.NoError(t, err)

	out, err := e.ToWire(&point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(1), "y": int64(2)}, out)

	out, err = e.ToWire("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	_, err = e.ToWire(3.5)
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)
}

func TestObject_AggregatesMissingFields(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("Point", entry.Spec{Name: "p", Description: "d", Required: true})
	require.NoError(t, err)

	var merr *entry.MissingArgumentsError
	require.ErrorAs(t, e.Validate(entry.Document{}), &merr)
	assert.Equal(t, [][]string{{"x", "y"}}, merr.Alternatives)

	var verr *entry.ValidationError
	require.ErrorAs(t, e.Validate(decode(t, `{"x": "one", "y": 2}`)), &verr)
	assert.Equal(t, "x", verr.Name)
}

func TestObject_OptionalAbsent(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("L{Node}", entry.Spec{Name: "location", Description: "d", HasDefault: true})
	require.NoError(t, err)

	require.NoError(t, e.Validate(entry.Document{}))
	v, err := e.FromWire(context.Background(), entry.Document{}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, a := range e.Arguments() {
		assert.False(t, a.Required, a.Name)
	}
}

func TestObject_ConstructFailure(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("L{Node}", entry.Spec{Name: "node", Description: "d", Required: true})
	require.NoError(t, err)

	doc := decode(t, `{"node_id": "404"}`)
	require.NoError(t, e.Validate(doc), "the JSON shape is valid")

	_, err = e.FromWire(context.Background(), doc, &lookupDriver{nodes: map[string]*node{}})
	var cerr *entry.ConstructError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, errNoNode)

	_, err = e.FromWire(context.Background(), doc, nil)
	require.ErrorAs(t, err, &cerr)
}

func TestObject_ToWire(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("L{Node}", entry.Spec{Name: "result", Description: "d", Required: true})
	require.NoError(t, err)

	n := &node{ID: "1", Name: "web", State: "running", IPs: []string{"10.0.0.1"}}
	out, err := e.ToWire(n)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id": "1", "name": "web", "state": "running", "public_ips": []string{"10.0.0.1"},
	}, out)

	_, err = e.ToWire(*n)
	require.NoError(t, err, "values are accepted as well as pointers")

	_, err = e.ToWire(&point{})
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)

	_, err = e.ToWire((*node)(nil))
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)
}

func TestSingleField(t *testing.T) {
	r := newRegistry(t)
	e, err := r.Resolve("RecordType", entry.Spec{Name: "type", Description: "d", Required: true})
	require.NoError(t, err)

	v, err := e.FromWire(context.Background(), entry.Document{"record_type": "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, recordType("A"), v)

	out, err := e.ToWire(recordType("MX"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"record_type": recordType("MX")}, out)
}

func TestList(t *testing.T) {
	r := newRegistry(t)

	ints, err := r.Resolve("list of int", entry.Spec{Name: "ports", Description: "d", Required: true})
	require.NoError(t, err)
	doc := decode(t, `{"ports": [80, 443]}`)
	require.NoError(t, ints.Validate(doc))
	v, err := ints.FromWire(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(80), int64(443)}, v)

	var verr *entry.ValidationError
	assert.ErrorAs(t, ints.Validate(decode(t, `{"ports": 80}`)), &verr)
	assert.ErrorAs(t, ints.Validate(decode(t, `{"ports": [80, "x"]}`)), &verr)

	var merr *entry.MissingArgumentsError
	assert.ErrorAs(t, ints.Validate(entry.Document{}), &merr)

	points, err := r.Resolve("C{list} of L{Point}", entry.Spec{Name: "points", Description: "d", Required: true})
	require.NoError(t, err)
	doc = decode(t, `{"points": [{"x": 1, "y": 2}, {"x": 3, "y": 4}]}`)
	require.NoError(t, points.Validate(doc))
	v, err = points.FromWire(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{&point{1, 2}, &point{3, 4}}, v)

	require.ErrorAs(t, points.Validate(decode(t, `{"points": [{"x": 1}]}`)), &merr)
	assert.Equal(t, []string{"y"}, merr.Names())

	out, err := points.ToWire([]*point{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"x": int64(1), "y": int64(2)}}, out)

	_, err = points.ToWire(&point{})
	assert.ErrorIs(t, err, entry.ErrCannotRepresent)
}

func TestArguments(t *testing.T) {
	r := newRegistry(t)

	e, err := r.Resolve("C{list} of L{Node}", entry.Spec{Name: "nodes", Description: "Nodes to attach", Required: true})
	require.NoError(t, err)
	assert.Equal(t, []entry.Argument{{Name: "nodes", Type: "list of Node", Description: "Nodes to attach", Required: true}}, e.Arguments())

	e, err = r.Resolve("L{Node}", entry.Spec{Name: "node", Description: "d", Required: true})
	require.NoError(t, err)
	assert.Equal(t, []entry.Argument{{Name: "node_id", Type: "string", Description: "ID of the node which should be used", Required: true}}, e.Arguments())

	e, err = r.Resolve("int", entry.Spec{Name: "ttl", Description: "TTL", Default: 60, HasDefault: true})
	require.NoError(t, err)
	assert.Equal(t, []entry.Argument{{Name: "ttl", Type: "integer", Description: "TTL", Default: 60}}, e.Arguments())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "list of Node", entry.Normalize("  C{list}  of   L{Node} "))
	assert.Equal(t, "Zone or string", entry.Normalize("L{Zone} or C{str}"))
}
