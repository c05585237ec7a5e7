// Package script evaluates Lua chunks as computed state values.
//
// A chunk sees each dependency as a global named after the last segment of
// its path and must return the derived value:
//
//	-- deps: ["theme", "system.colorScheme"]
//	if theme == "system" then return colorScheme end
//	return theme
//
// Each evaluation runs in a fresh interpreter with only the base, table,
// string and math libraries.
package script
