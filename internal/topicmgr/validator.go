package topicmgr

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	segmentedName = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)*$`)
	moduleIdent   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	errNilTopic = errors.New("topic cannot be nil")
)

// NamingRules constrain topic definitions.
type NamingRules struct {
	MaxNameLen   int
	MaxModuleLen int
	// Reserved prefixes may not start any topic name.
	Reserved []string
	// FrameworkPrefixes lists the prefixes a framework-scoped topic must use.
	FrameworkPrefixes []string
}

// DefaultRules are the rules every Manager starts with.
func DefaultRules() NamingRules {
	return NamingRules{
		MaxNameLen:        100,
		MaxModuleLen:      50,
		Reserved:          []string{"system.", "internal.", "debug."},
		FrameworkPrefixes: []string{"gateway.", "server."},
	}
}

// Validator applies NamingRules to topic names and definitions.
type Validator struct {
	rules NamingRules
}

// NewValidator returns a validator using DefaultRules.
func NewValidator() *Validator {
	return &Validator{rules: DefaultRules()}
}

// ValidateName checks a dotted lowercase name such as "contact.message.created".
func (v *Validator) ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("name cannot be empty")
	case len(name) > v.rules.MaxNameLen:
		return fmt.Errorf("name longer than %d characters", v.rules.MaxNameLen)
	case !segmentedName.MatchString(name):
		return errors.New("name must be lowercase alphanumeric segments joined by dots")
	}
	if p, ok := firstPrefix(name, v.rules.Reserved); ok {
		return fmt.Errorf("name uses reserved prefix %q", p)
	}
	return nil
}

// ValidateDefinition checks the name, the descriptive fields and that the
// scope agrees with the owning module.
func (v *Validator) ValidateDefinition(topic Topic) error {
	if topic == nil {
		return errNilTopic
	}
	if err := v.ValidateName(topic.Name()); err != nil {
		return fmt.Errorf("invalid topic name: %w", err)
	}
	if strings.TrimSpace(topic.Description()) == "" {
		return errors.New("topic description cannot be empty")
	}
	if strings.TrimSpace(topic.Pattern()) == "" {
		return errors.New("topic pattern cannot be empty")
	}
	return v.checkScope(topic)
}

func (v *Validator) checkScope(topic Topic) error {
	switch topic.Scope() {
	case ScopeFramework:
		if topic.Module() != "" {
			return errors.New("framework topics cannot belong to a module")
		}
		if _, ok := firstPrefix(topic.Name(), v.rules.FrameworkPrefixes); !ok {
			return fmt.Errorf("framework topic must start with one of %v", v.rules.FrameworkPrefixes)
		}
	case ScopeModule:
		mod := topic.Module()
		if len(mod) > v.rules.MaxModuleLen || !moduleIdent.MatchString(mod) {
			return fmt.Errorf("invalid module name %q", mod)
		}
	default:
		return fmt.Errorf("invalid topic scope: %q", topic.Scope())
	}
	return nil
}

func firstPrefix(name string, prefixes []string) (string, bool) {
	i := slices.IndexFunc(prefixes, func(p string) bool { return strings.HasPrefix(name, p) })
	if i < 0 {
		return "", false
	}
	return prefixes[i], true
}
