package pgsql

// Operator and function classification data. These tables are large and
// stable; keep them data-driven rather than branching in the inference
// code.

// nullSafeOperators holds the operators for which a NULL operand in any
// position makes the result NULL. Boolean connectives (AND, OR, NOT) and
// the IS family are absent: they map NULL to non-NULL values.
var nullSafeOperators = map[string]bool{
	// Arithmetic
	"+": true,
	"-": true,
	"*": true,
	"/": true,
	"%": true,
	"^": true,

	// Comparison
	"<":  true,
	">":  true,
	"=":  true,
	"<=": true,
	">=": true,
	"<>": true,

	// String concatenation and typecast
	"||": true,
	"::": true,

	// Pattern matching and regex
	"~":   true,
	"~*":  true,
	"!~":  true,
	"!~*": true,

	// Bitwise
	"&":  true,
	"|":  true,
	"#":  true,
	"<<": true,
	">>": true,

	// JSON / array / range containment and access
	"->":  true,
	"->>": true,
	"#>":  true,
	"#>>": true,
	"@>":  true,
	"<@":  true,
	"?":   true,
	"?|":  true,
	"?&":  true,
	"&&":  true,

	// Subscript
	"[]": true,
}

// functionClasses maps lower-cased function names to their nullability
// class. Functions absent from the table are FuncUnknown.
var functionClasses = map[string]FunctionClass{
	// Never null: result is non-null regardless of the arguments.
	"coalesce":              FuncNeverNull, // NULL when every argument is NULL; see pkg/infer
	"concat":                FuncNeverNull,
	"concat_ws":             FuncNeverNull, // NULL when the separator is NULL; see pkg/infer
	"count":                 FuncNeverNull,
	"num_nulls":             FuncNeverNull,
	"num_nonnulls":          FuncNeverNull,
	"now":                   FuncNeverNull,
	"statement_timestamp":   FuncNeverNull,
	"transaction_timestamp": FuncNeverNull,
	"clock_timestamp":       FuncNeverNull,
	"timeofday":             FuncNeverNull,
	"random":                FuncNeverNull,
	"pi":                    FuncNeverNull,
	"version":               FuncNeverNull,
	"current_database":      FuncNeverNull,
	"current_schema":        FuncNeverNull,
	"gen_random_uuid":       FuncNeverNull,
	"txid_current":          FuncNeverNull,
	"pg_backend_pid":        FuncNeverNull,

	// Strict (null-safe): NULL in, NULL out; non-null otherwise.
	"abs":              FuncNullSafe,
	"ceil":             FuncNullSafe,
	"ceiling":          FuncNullSafe,
	"floor":            FuncNullSafe,
	"round":            FuncNullSafe,
	"trunc":            FuncNullSafe,
	"sign":             FuncNullSafe,
	"sqrt":             FuncNullSafe,
	"cbrt":             FuncNullSafe,
	"exp":              FuncNullSafe,
	"ln":               FuncNullSafe,
	"log":              FuncNullSafe,
	"power":            FuncNullSafe,
	"mod":              FuncNullSafe,
	"degrees":          FuncNullSafe,
	"radians":          FuncNullSafe,
	"length":           FuncNullSafe,
	"char_length":      FuncNullSafe,
	"character_length": FuncNullSafe,
	"octet_length":     FuncNullSafe,
	"bit_length":       FuncNullSafe,
	"lower":            FuncNullSafe,
	"upper":            FuncNullSafe,
	"initcap":          FuncNullSafe,
	"trim":             FuncNullSafe,
	"btrim":            FuncNullSafe,
	"ltrim":            FuncNullSafe,
	"rtrim":            FuncNullSafe,
	"lpad":             FuncNullSafe,
	"rpad":             FuncNullSafe,
	"left":             FuncNullSafe,
	"right":            FuncNullSafe,
	"repeat":           FuncNullSafe,
	"reverse":          FuncNullSafe,
	"replace":          FuncNullSafe,
	"translate":        FuncNullSafe,
	"split_part":       FuncNullSafe,
	"strpos":           FuncNullSafe,
	"substr":           FuncNullSafe,
	"substring":        FuncUnknown, // regex form returns NULL on no match
	"position":         FuncNullSafe,
	"ascii":            FuncNullSafe,
	"chr":              FuncNullSafe,
	"md5":              FuncNullSafe,
	"to_hex":           FuncNullSafe,
	"encode":           FuncNullSafe,
	"decode":           FuncNullSafe,
	"quote_ident":      FuncNullSafe,
	"quote_literal":    FuncNullSafe,
	"to_char":          FuncNullSafe,
	"to_date":          FuncNullSafe,
	"to_number":        FuncNullSafe,
	"to_timestamp":     FuncNullSafe,
	"date_part":        FuncNullSafe,
	"date_trunc":       FuncNullSafe,
	"extract":          FuncNullSafe,
	"age":              FuncNullSafe,
	"justify_days":     FuncNullSafe,
	"justify_hours":    FuncNullSafe,
	"array_length":     FuncUnknown, // NULL for an empty array
	"array_lower":      FuncUnknown, // NULL for an empty array
	"array_upper":      FuncUnknown, // NULL for an empty array
	"cardinality":      FuncNullSafe,
	"lengthb":          FuncNullSafe,
	"nullif":           FuncUnknown, // NULL when its arguments are equal

	// Type-conversion functions: strict casts.
	"bool":        FuncNullSafe,
	"int2":        FuncNullSafe,
	"int4":        FuncNullSafe,
	"int8":        FuncNullSafe,
	"float4":      FuncNullSafe,
	"float8":      FuncNullSafe,
	"numeric":     FuncNullSafe,
	"text":        FuncNullSafe,
	"varchar":     FuncNullSafe,
	"bpchar":      FuncNullSafe,
	"date":        FuncNullSafe,
	"time":        FuncNullSafe,
	"timestamp":   FuncNullSafe,
	"timestamptz": FuncNullSafe,
	"interval":    FuncNullSafe,
	"uuid":        FuncNullSafe,
	"json":        FuncNullSafe,
	"jsonb":       FuncNullSafe,
}

// reservedWords is the PostgreSQL reserved-word list: words that cannot be
// used as unquoted identifiers. Source: pg_get_keywords() categories
// 'reserved' and 'type_func_name_reserved'.
var reservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true,
	"authorization": true, "between": true, "binary": true, "both": true,
	"case": true, "cast": true, "check": true, "collate": true,
	"collation": true, "column": true, "concurrently": true,
	"constraint": true, "create": true, "cross": true,
	"current_catalog": true, "current_date": true, "current_role": true,
	"current_schema": true, "current_time": true, "current_timestamp": true,
	"current_user": true, "default": true, "deferrable": true, "desc": true,
	"distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "fetch": true, "for": true, "foreign": true,
	"freeze": true, "from": true, "full": true, "grant": true, "group": true,
	"having": true, "ilike": true, "in": true, "initially": true,
	"inner": true, "intersect": true, "into": true, "is": true,
	"isnull": true, "join": true, "lateral": true, "leading": true,
	"left": true, "like": true, "limit": true, "localtime": true,
	"localtimestamp": true, "natural": true, "not": true, "notnull": true,
	"null": true, "offset": true, "on": true, "only": true, "or": true,
	"order": true, "outer": true, "overlaps": true, "placing": true,
	"primary": true, "references": true, "returning": true, "right": true,
	"select": true, "session_user": true, "similar": true, "some": true,
	"symmetric": true, "table": true, "tablesample": true, "then": true,
	"to": true, "trailing": true, "true": true, "union": true,
	"unique": true, "user": true, "using": true, "variadic": true,
	"verbose": true, "when": true, "where": true, "window": true,
	"with": true,
}
