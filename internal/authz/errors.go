package authz

import "fmt"

// ConfigurationError reports invalid role configuration: a cyclic
// inheritance chain or a reference to an undefined role. It is raised
// only while building the registry at startup, never on the decision
// path.
type ConfigurationError struct {
	Role   string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("authz: role %q: %s", e.Role, e.Detail)
}
