package reader

import (
	"log/slog"
	"regexp"
	"strings"
)

// NameValidator decides which discovered tables or views are read.
type NameValidator struct {
	kind    string
	include *regexp.Regexp
	exclude *regexp.Regexp
	types   map[string]struct{}
	log     *slog.Logger
}

// NewNameValidator accepts objects of the given catalog types. kind ("table"
// or "view") only labels log messages.
func NewNameValidator(kind string, include, exclude *regexp.Regexp, types []string, log *slog.Logger) *NameValidator {
	if log == nil {
		log = slog.Default()
	}
	v := &NameValidator{
		kind:    kind,
		include: include,
		exclude: exclude,
		types:   make(map[string]struct{}, len(types)),
		log:     log,
	}
	for _, t := range types {
		v.types[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return v
}

// IsValid reports whether name should be read. The type must be accepted,
// the name must not contain '$' (engines use it for internal objects), it
// must not match the exclusion pattern and it must match the inclusion one.
func (v *NameValidator) IsValid(name, typ string) bool {
	if _, ok := v.types[strings.ToUpper(strings.TrimSpace(typ))]; !ok {
		return false
	}

	if strings.Contains(name, "$") {
		v.log.Debug("excluding "+v.kind, "name", name, "reason", "embedded $ implies an internal object")
		return false
	}

	if v.exclude != nil && v.exclude.MatchString(name) {
		v.log.Debug("excluding "+v.kind, "name", name, "reason", "matches exclusion pattern", "pattern", v.exclude.String())
		return false
	}

	if v.include != nil && !v.include.MatchString(name) {
		v.log.Debug("excluding "+v.kind, "name", name, "reason", "does not match inclusion pattern", "pattern", v.include.String())
		return false
	}

	v.log.Debug("including "+v.kind, "name", name)
	return true
}
