// Package binding describes which named events an intercepted call emits.
//
// A Set holds the before and after bindings of one callable. Each Binding
// optionally overrides the event name (the default is "<member>.before" or
// "<member>.after") and carries a priority in [-100, 100]. Bindings are
// processed in declaration order.
//
// Sets come from a Source. Table is an in-memory Source populated by code
// or loaded from a YAML or JSON file:
//
//	bindings:
//	  - member: UserService.CreateUser
//	    before:
//	      - event: user.creating
//	        priority: 10
//	    after:
//	      - user.created
package binding
