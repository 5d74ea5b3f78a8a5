package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdentifier(t *testing.T) {
	for _, id := range []string{"gm-file", "a", "store_1", "legacy.gm"} {
		assert.True(t, ValidIdentifier(id), id)
	}
	for _, id := range []string{"", "-gm", "gm-", "gm file", "gm/file", strings.Repeat("a", QualifiedNameMaxLength+1)} {
		assert.False(t, ValidIdentifier(id), id)
	}
}
