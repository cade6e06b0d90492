// Package pattern compiles event-name patterns into matchers.
//
// # Syntax
//
// Event names are dot-separated segments:
//
//	user.create
//	user.group:create
//	namespace.app.user.created
//
// A pattern may contain two kinds of wildcard:
//
//   - "*" matches one or more characters within a single segment (never a ".")
//   - "{a,b,c}" matches exactly one of the literal members a, b or c
//
// Examples:
//
//	user.*                           matches user.create, user.delete (not user.a.b)
//	*.group:create                   matches user.group:create, admin.group:create
//	namespace.*.user.{created,updated}
//	                                 matches namespace.app.user.created
//
// A compiled pattern always matches the whole name. Brace members are taken
// literally, so "{a*,b}" matches "a*" and "b" but not "ab". An empty or
// unterminated brace group ("{}", "user.{a") is treated as literal text.
//
// Patterns containing neither "*" nor "{" are exact names; callers use
// IsWildcard to route those to an exact-name lookup instead of a Matcher.
//
// # Usage
//
//	m := pattern.Compile("user.*")
//	m.Matches("user.create") // true
//	m.Matches("user.a.b")    // false
package pattern
