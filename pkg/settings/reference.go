// SPDX-License-Identifier: MPL-2.0

package settings

import "strings"

// ResolveReferences replaces every "${name}" in raw with global[name] and
// every escaped "$${name}" with the literal "${name}".
//
// The value is scanned once from left to right. Substituted text is never
// scanned again, so a global value containing "${...}" is copied verbatim.
// A "$" that does not start a complete placeholder is kept as is.
func ResolveReferences(option, raw string, global GlobalOptions) (string, error) {
	if !strings.Contains(raw, "${") {
		return raw, nil
	}

	var out strings.Builder
	out.Grow(len(raw))

	for i := 0; i < len(raw); {
		if raw[i] != '$' {
			out.WriteByte(raw[i])
			i++
			continue
		}

		// "$${name}": drop one "$" and copy the placeholder untouched.
		if strings.HasPrefix(raw[i:], "$${") {
			if end := placeholderEnd(raw, i+1); end > 0 {
				out.WriteString(raw[i+1 : end])
				i = end
				continue
			}
		}

		if strings.HasPrefix(raw[i:], "${") {
			if end := placeholderEnd(raw, i); end > 0 {
				name := raw[i+2 : end-1]
				value, ok := global[name]
				if !ok {
					return "", &MissingReferenceError{Option: option, Reference: name}
				}
				out.WriteString(value)
				i = end
				continue
			}
		}

		out.WriteByte('$')
		i++
	}

	return out.String(), nil
}

// placeholderEnd returns the index just past the "}" closing the placeholder
// that starts with "${" at start, or -1 when there is no non-empty name.
func placeholderEnd(raw string, start int) int {
	closing := strings.IndexByte(raw[start+2:], '}')
	if closing <= 0 {
		return -1
	}
	return start + 2 + closing + 1
}
