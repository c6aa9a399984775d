package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_ReplacesBoundPlaceholders(t *testing.T) {
	t.Parallel()
	bindings := map[string]string{"APP_ID": "web-app", "VERSION": "1.2.0"}

	out := Expand("deploy.sh ${APP_ID} ${VERSION}", bindings)

	assert.Equal(t, "deploy.sh web-app 1.2.0", out)
}

func TestExpand_LeavesUnboundPlaceholdersVerbatim(t *testing.T) {
	t.Parallel()
	bindings := map[string]string{"APP_ID": "web-app"}

	out := Expand("deploy.sh ${APP_ID} ${ENV}", bindings)

	assert.Equal(t, "deploy.sh web-app ${ENV}", out)
}

func TestExpand_IgnoresNonPlaceholderDollarSigns(t *testing.T) {
	t.Parallel()
	out := Expand("echo $HOME ${1} ${lower_case}", map[string]string{"lower_case": "x"})

	// $HOME has no braces and ${1} is not an identifier; both pass through.
	assert.Equal(t, "echo $HOME ${1} x", out)
}

func TestExpand_SameVariableTwice(t *testing.T) {
	t.Parallel()
	out := Expand("${A}:${A}", map[string]string{"A": "v"})

	assert.Equal(t, "v:v", out)
}

func TestExpandStrict_ErrorsOnUnresolved(t *testing.T) {
	t.Parallel()
	out, err := ExpandStrict("run ${APP_ID} ${ENV} ${REGION}", map[string]string{"APP_ID": "a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV")
	assert.Contains(t, err.Error(), "REGION")
	// The partially expanded string is still returned for diagnostics.
	assert.Equal(t, "run a ${ENV} ${REGION}", out)
}

func TestExpandStrict_SucceedsWhenFullyBound(t *testing.T) {
	t.Parallel()
	out, err := ExpandStrict("run ${APP_ID}", map[string]string{"APP_ID": "a"})

	require.NoError(t, err)
	assert.Equal(t, "run a", out)
}

func TestNames_OrderOfFirstAppearance(t *testing.T) {
	t.Parallel()
	names := Names("a ${B} b ${A} ${B}")

	assert.Equal(t, []string{"B", "A"}, names)
}

func TestNames_NoPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Names("plain command"))
}
