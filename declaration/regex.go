package declaration

import (
	"fmt"
	"regexp"
	"strings"
)

// compileRegex compiles a spec §6 `regex=/<pattern>/<flags>?` validator
// pattern into a Go [*regexp.Regexp]. The only flag given first-class
// meaning is "i" (case-insensitive), translated to Go's inline (?i)
// syntax; any other flag characters are accepted but ignored, since the
// spec does not assign them cross-implementation semantics.
func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	p := pattern

	if strings.Contains(flags, "i") {
		p = "(?i)" + p
	}

	re, err := regexp.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("compile regex %q: %w", pattern, err)
	}

	return re, nil
}

// CompileValidator compiles v's regex for use at instance-validation
// time. It is exported so that [github.com/concerto-project/concerto-go/serializer]
// can re-check string values without duplicating the flag-translation
// rule above. Callers should only call this for a [ValidatorStringRegex]
// validator; v's pattern was already checked for compilability by
// [ClassDeclaration.ValidateOwnShape] at model-load time, so an error
// here would indicate a programming error, not bad user input.
func CompileValidator(v *Validator) (*regexp.Regexp, error) {
	return compileRegex(v.Pattern, v.Flags)
}
