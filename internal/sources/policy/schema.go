package policy

// FileConfig represents the top-level structure of policy.yaml.
//
// Example:
//
//	denylist:
//	  - "casino bonus"
//	  - "free followers"
type FileConfig struct {
	Denylist []string `yaml:"denylist"`
}
