package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var settingKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// SettingKeyFormat validates a settings key. Keys are used verbatim as YAML
// map keys, Redis hash fields and URL path segments, so they may contain only
// [a-zA-Z0-9-] and may not start or end with a hyphen.
func SettingKeyFormat(key string) error {
	if key == "" {
		return fmt.Errorf("setting key cannot be empty")
	}

	if !settingKeyRegex.MatchString(key) {
		return fmt.Errorf("setting key '%s' must contain only letters, numbers and hyphens (-)", key)
	}

	if strings.HasPrefix(key, "-") || strings.HasSuffix(key, "-") {
		return fmt.Errorf("setting key '%s' cannot start or end with a hyphen (-)", key)
	}

	return nil
}
