package match

// ValueKind discriminates the capture union spec.md §4.4 and §9 describe:
// Null | Str | Map<string, Value> | List<Value>.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueMap
	ValueList
)

// Value is the tagged-union capture type spec.md §9 recommends in place
// of an open class hierarchy of capture shapes.
type Value struct {
	Kind ValueKind
	Str  string
	Map  map[string]Value
	List []Value
}

func Null() Value { return Value{Kind: ValueNull} }

func Str(s string) Value { return Value{Kind: ValueString, Str: s} }

func Map(m map[string]Value) Value { return Value{Kind: ValueMap, Map: m} }

func List(l []Value) Value { return Value{Kind: ValueList, List: l} }

// IsNull reports whether v carries no capture.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// Interface converts a Value to plain Go data (map[string]interface{},
// []interface{}, string, or nil), the shape the cmd/tokex CLI marshals to
// YAML for the match subcommand.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueMap:
		out := make(map[string]interface{}, len(v.Map))
		for k, e := range v.Map {
			out[k] = e.Interface()
		}
		return out
	case ValueList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = e.Interface()
		}
		return out
	default:
		return nil
	}
}
