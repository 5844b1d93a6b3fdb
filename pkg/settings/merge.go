// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"fmt"
	"reflect"

	"github.com/charmbracelet/log"
)

// Merge copies resolved into ns without clobbering what the namespace
// already defines:
//   - undefined attributes are set;
//   - sequence attributes receiving a sequence are extended, the result
//     being a new []any with the existing items first;
//   - any other collision keeps the existing value and logs a warning.
//
// Options are merged in name order. A nil logger warns on stderr.
func Merge(resolved ResolvedOptions, ns Namespace, logger *log.Logger) {
	if logger == nil {
		logger = newDefaultLogger()
	}
	for _, name := range resolved.Names() {
		value := resolved[name]

		existing, defined := ns.Lookup(name)
		if !defined {
			ns.Set(name, value)
			continue
		}

		if isSequence(existing) && isSequence(value) {
			ns.Set(name, concatSequences(existing, value))
			continue
		}

		logger.Warn(fmt.Sprintf("%q will not be overridden in %s", name, ns.Name()))
	}
}

func isSequence(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func concatSequences(head, tail any) []any {
	hv := reflect.ValueOf(head)
	tv := reflect.ValueOf(tail)

	out := make([]any, 0, hv.Len()+tv.Len())
	for i := range hv.Len() {
		out = append(out, hv.Index(i).Interface())
	}
	for i := range tv.Len() {
		out = append(out, tv.Index(i).Interface())
	}
	return out
}
