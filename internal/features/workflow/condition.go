package workflow

import "fmt"

// Condition evaluation works over a closed value vocabulary: string, number,
// boolean and string-set. Anything else in a payload or a rule is an
// evaluation error, never a silent coercion, so a definition authored against
// the wrong field type fails loudly and deterministically.

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindBool
	kindStringSet
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	default:
		return "string-set"
	}
}

type fieldValue struct {
	kind valueKind
	str  string
	num  float64
	b    bool
	set  []string
}

// typedValue narrows a raw JSON/BSON decoded value into the closed set.
// BSON decoding yields int32/int64 for Mongo numerics, JSON yields float64;
// both normalize to float64 here.
func typedValue(field string, op ConditionOperator, v interface{}) (fieldValue, error) {
	switch t := v.(type) {
	case string:
		return fieldValue{kind: kindString, str: t}, nil
	case bool:
		return fieldValue{kind: kindBool, b: t}, nil
	case float64:
		return fieldValue{kind: kindNumber, num: t}, nil
	case float32:
		return fieldValue{kind: kindNumber, num: float64(t)}, nil
	case int:
		return fieldValue{kind: kindNumber, num: float64(t)}, nil
	case int32:
		return fieldValue{kind: kindNumber, num: float64(t)}, nil
	case int64:
		return fieldValue{kind: kindNumber, num: float64(t)}, nil
	case []string:
		return fieldValue{kind: kindStringSet, set: t}, nil
	case []interface{}:
		set := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				return fieldValue{}, &ConditionEvalError{Field: field, Op: op, Reason: fmt.Sprintf("set element %v is not a string", el)}
			}
			set = append(set, s)
		}
		return fieldValue{kind: kindStringSet, set: set}, nil
	default:
		return fieldValue{}, &ConditionEvalError{Field: field, Op: op, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

// evaluateCondition checks one {field, operator, value} triple against the
// document payload.
func evaluateCondition(cond ConditionConfig, requestData map[string]interface{}) (bool, error) {
	raw, ok := requestData[cond.Field]
	if !ok {
		return false, &ConditionEvalError{Field: cond.Field, Op: cond.Operator, Reason: "field not present in payload"}
	}

	actual, err := typedValue(cond.Field, cond.Operator, raw)
	if err != nil {
		return false, err
	}
	expected, err := typedValue(cond.Field, cond.Operator, cond.Value)
	if err != nil {
		return false, err
	}

	switch cond.Operator {
	case OpEq, OpNe:
		if actual.kind != expected.kind || actual.kind == kindStringSet {
			return false, &ConditionEvalError{Field: cond.Field, Op: cond.Operator,
				Reason: fmt.Sprintf("cannot compare %s against %s", actual.kind, expected.kind)}
		}
		var eq bool
		switch actual.kind {
		case kindString:
			eq = actual.str == expected.str
		case kindNumber:
			eq = actual.num == expected.num
		case kindBool:
			eq = actual.b == expected.b
		}
		if cond.Operator == OpNe {
			return !eq, nil
		}
		return eq, nil

	case OpGt, OpGte, OpLt, OpLte:
		if actual.kind != kindNumber || expected.kind != kindNumber {
			return false, &ConditionEvalError{Field: cond.Field, Op: cond.Operator,
				Reason: fmt.Sprintf("numeric comparison needs numbers, got %s and %s", actual.kind, expected.kind)}
		}
		switch cond.Operator {
		case OpGt:
			return actual.num > expected.num, nil
		case OpGte:
			return actual.num >= expected.num, nil
		case OpLt:
			return actual.num < expected.num, nil
		default:
			return actual.num <= expected.num, nil
		}

	case OpIn, OpNin:
		if actual.kind != kindString || expected.kind != kindStringSet {
			return false, &ConditionEvalError{Field: cond.Field, Op: cond.Operator,
				Reason: fmt.Sprintf("membership needs a string payload value and a string-set rule value, got %s and %s", actual.kind, expected.kind)}
		}
		found := false
		for _, s := range expected.set {
			if s == actual.str {
				found = true
				break
			}
		}
		if cond.Operator == OpNin {
			return !found, nil
		}
		return found, nil

	default:
		return false, &ConditionEvalError{Field: cond.Field, Op: cond.Operator, Reason: "unknown operator"}
	}
}

// evaluateRule applies AND-of-conditions. An empty condition list matches.
func evaluateRule(rule RoutingRule, requestData map[string]interface{}) (bool, error) {
	for _, cond := range rule.Conditions {
		ok, err := evaluateCondition(cond, requestData)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
