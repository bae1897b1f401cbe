// Package validation checks flat request input against pipe-separated rules.
//
//	v := validation.Make(map[string]string{
//	    "service":        "IRepository<Customer>",
//	    "implementation": "GenericRepository<>",
//	}, validation.Rules{
//	    "service":        "required|max:512|type",
//	    "implementation": "required|max:512|type",
//	    "suppress":       "sometimes|boolean",
//	})
//
//	if v.Fails() {
//	    // JSON: {"errors": {"field": ["message"]}}
//	}
//
// # Available Rules
//
//   - required   present and not blank
//   - min:n      at least n UTF-8 characters
//   - max:n      at most n UTF-8 characters
//   - boolean    true/false/1/0/yes/no (case-insensitive)
//   - in:a,b,c   one of the listed values
//   - regex:re   matches the regular expression
//   - identifier a bare type name
//   - type       a well formed type expression such as Map<string, List<T>>
//     or IRepository<>; names are not resolved
//   - nullable   an empty value skips the remaining rules
//   - sometimes  an absent field skips the remaining rules
//
// Rules for a field stop at the first failure.
package validation
