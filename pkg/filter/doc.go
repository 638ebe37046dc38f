// Package filter parses the filter expressions of the list endpoints and turns
// them into parameterized SQL conditions.
//
// Example:
//
//	disposition = 'failure' and (event_id = 'scanner-command' or message ~ /jam/)
//
// Grammar:
//
//	expression : term ( "or" term )* ;
//	term       : factor ( "and" factor )* ;
//	factor     : comparison | "(" expression ")" ;
//	comparison : IDENTIFIER ( "=" | "!=" | "<" | "<=" | ">" | ">=" ) value
//	           | IDENTIFIER ( "~" | "!~" ) REGEX ;
//	value      : STRING | NUMBER | BOOLEAN ;
//
//	IDENTIFIER : [a-zA-Z_][a-zA-Z0-9_.]* ;
//	STRING     : "'" .* "'" | "\"" .* "\"" ;   quotes escaped with a backslash
//	NUMBER     : "-"? [0-9]+ ( "." [0-9]+ )? ;
//	BOOLEAN    : "true" | "false" ;             case insensitive, like "and" / "or"
//	REGEX      : "/" .* "/" ;                   "\/" escapes a slash
//
// Identifiers are resolved through a Fields whitelist, so a filter can only
// reach the columns its endpoint exposes. Values are always bound as arguments.
//
//	┌──────────┬──────────────────────────────┐
//	│ Operator │ SQL                          │
//	├──────────┼──────────────────────────────┤
//	│ =  !=    │ col = ?      col <> ?        │
//	│ < <= > >=│ col < ?  ...                 │
//	│ ~        │ regexp_matches(col, ?)       │
//	│ !~       │ NOT regexp_matches(col, ?)   │
//	│ and / or │ (a AND b)    (a OR b)        │
//	└──────────┴──────────────────────────────┘
package filter
