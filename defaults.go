package tmplcore

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitsuhiko/tmplcore/value"
)

func registerDefaultFilters(env *Environment) {
	// Array filters
	env.AddFilter("first", filterFirst)
	env.AddFilter("last", filterLast)
	env.AddFilter("nth", filterNth)
	env.AddFilter("join", filterJoin)
	env.AddFilter("sort", filterSort)
	env.AddFilter("group_by", filterGroupBy)
	env.AddFilter("filter", filterFilter)
	env.AddFilter("slice", filterSlice)
	env.AddFilter("concat", filterConcat)
	env.AddFilter("unique", filterUnique)
	env.AddFilter("sum", filterSum)
	env.AddFilter("min", filterMin)
	env.AddFilter("max", filterMax)

	// Filters for any kind of value
	env.AddFilter("length", filterLength)
	env.AddFilter("reverse", filterReverse)
	env.AddFilter("json_encode", filterJSONEncode)
	env.AddFilter("date", filterDate)
	env.AddFilter("as_str", filterAsStr)

	// Number filters
	env.AddFilter("pluralize", filterPluralize)
	env.AddFilter("round", filterRound)
	env.AddFilter("abs", filterAbs)
	env.AddFilter("filesizeformat", filterFilesizeformat)

	// Object filters
	env.AddFilter("get", filterGet)
	env.AddFilter("keys", filterKeys)
	env.AddFilter("values", filterValues)
	env.AddFilter("items", filterItems)

	// String filters
	env.AddFilter("upper", filterUpper)
	env.AddFilter("lower", filterLower)
	env.AddFilter("trim", filterTrim)
	env.AddFilter("truncate", filterTruncate)
	env.AddFilter("wordcount", filterWordcount)
	env.AddFilter("replace", filterReplace)
	env.AddFilter("capitalize", filterCapitalize)
	env.AddFilter("urlencode", filterUrlencode)
	env.AddFilter("addslashes", filterAddslashes)
	env.AddFilter("slugify", filterSlugify)
	env.AddFilter("title", filterTitle)
	env.AddFilter("striptags", filterStriptags)
	env.AddFilter("escape_html", filterEscapeHTML)
	env.AddFilter("split", filterSplit)
}

func registerDefaultTests(env *Environment) {
	env.AddTest("defined", TestDefined)
	env.AddTest("undefined", TestUndefined)
	env.AddTest("string", TestString)
	env.AddTest("number", TestNumber)
	env.AddTest("odd", TestOdd)
	env.AddTest("even", TestEven)
	env.AddTest("divisibleby", TestDivisibleBy)
	env.AddTest("iterable", TestIterable)
	env.AddTest("starting_with", TestStartingWith)
	env.AddTest("ending_with", TestEndingWith)
	env.AddTest("containing", TestContaining)
	env.AddTest("matching", TestMatching)
}

func registerDefaultFunctions(env *Environment) {
	env.AddFunction("range", fnRange)
	env.AddFunction("now", fnNow)
	env.AddFunction("throw", fnThrow)
	env.AddFunction("debug", fnDebug)
}

// maxRangeLen bounds the arrays produced by range.
const maxRangeLen = 100000

// fnRange implements the `range` function: the integers from start
// (inclusive) to end (exclusive) in steps of step_by.
func fnRange(_ *State, args map[string]value.Value) (value.Value, error) {
	end, err := requiredArg("range", args, "end")
	if err != nil {
		return value.Value{}, err
	}
	stop, ok := end.AsInt()
	if !ok || stop < 0 {
		return value.Value{}, value.InvalidArgument("range", "end",
			fmt.Sprintf("got %s but `end` can only be a non-negative integer", end.Repr()))
	}
	start := int64(0)
	if v, ok := args["start"]; ok {
		start, ok = v.AsInt()
		if !ok || start < 0 {
			return value.Value{}, value.InvalidArgument("range", "start",
				fmt.Sprintf("got %s but `start` can only be a non-negative integer", v.Repr()))
		}
	}
	step := int64(1)
	if v, ok := args["step_by"]; ok {
		step, ok = v.AsInt()
		if !ok || step <= 0 {
			return value.Value{}, value.InvalidArgument("range", "step_by",
				fmt.Sprintf("got %s but `step_by` can only be a positive integer", v.Repr()))
		}
	}
	if start > stop {
		return value.Value{}, value.InvalidArgument("range", "start", "`start` is greater than `end`")
	}
	n := (stop - start) / step
	if (stop-start)%step != 0 {
		n++
	}
	if n > maxRangeLen {
		return value.Value{}, value.InvalidArgument("range", "end", "range has too many elements")
	}

	result := make([]value.Value, n)
	for i := range result {
		result[i] = value.FromInt(start + int64(i)*step)
	}
	return value.FromSlice(result), nil
}

// clock is replaced in tests.
var clock = time.Now

// fnNow implements the `now` function. It returns the current time as an
// RFC 3339 string, or as a unix timestamp when timestamp is true.
func fnNow(_ *State, args map[string]value.Value) (value.Value, error) {
	utc, err := boolArg("now", args, "utc", false)
	if err != nil {
		return value.Value{}, err
	}
	timestamp, err := boolArg("now", args, "timestamp", false)
	if err != nil {
		return value.Value{}, err
	}
	t := clock()
	if utc {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	if timestamp {
		return value.FromInt(t.Unix()), nil
	}
	return value.FromString(t.Format(time.RFC3339Nano)), nil
}

// fnThrow implements the `throw` function which always fails with the
// given message.
func fnThrow(_ *State, args map[string]value.Value) (value.Value, error) {
	message, err := requiredStringArg("throw", args, "message")
	if err != nil {
		return value.Value{}, err
	}
	return value.Value{}, value.NewError(value.ErrUser, message)
}

// fnDebug implements the `debug` function. Without arguments it dumps the
// state, otherwise the debug representation of each argument.
func fnDebug(state *State, args map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.FromString(state.DebugString()), nil
	}
	m := value.FromMap(args)
	parts := make([]string, 0, len(args))
	for _, k := range m.Keys() {
		parts = append(parts, k+": "+args[k].Repr())
	}
	return value.FromString(strings.Join(parts, ", ")), nil
}
