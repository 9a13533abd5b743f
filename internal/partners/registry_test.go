package partners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve_UnknownPartner(t *testing.T) {
	r := New(nil, WithEnv(envMap(nil)))
	_, ok := r.Resolve("nonexistent-provider")
	assert.False(t, ok)
}

func TestResolve_BlankConfigStillReturned(t *testing.T) {
	r := New(nil, WithEnv(envMap(nil)))
	p, ok := r.Resolve("salesforge")
	require.True(t, ok)
	assert.Equal(t, "SalesForge CRM", p.Name)
	assert.False(t, p.LoginConfigured())
	assert.False(t, p.VerifyConfigured())
}

func TestResolve_ReadsEnvAtLookup(t *testing.T) {
	env := map[string]string{}
	r := New([]Descriptor{{ID: "Lead-Hub"}}, WithEnv(envMap(env)))

	p, ok := r.Resolve("lead-hub")
	require.True(t, ok)
	assert.False(t, p.LoginConfigured())

	env["LEAD_HUB_APP_URL"] = "https://leadhub.example.com/"
	env["LEAD_HUB_SHARED_SECRET"] = "s"
	env["NEXT_PUBLIC_LEAD_HUB_FIREBASE_PROJECT_ID"] = "leadhub-prod"

	p, ok = r.Resolve("LEAD-HUB")
	require.True(t, ok)
	assert.Equal(t, "lead-hub", p.Name)
	assert.Equal(t, "https://leadhub.example.com", p.AppURL)
	assert.Equal(t, "leadhub-prod", p.ProjectID)
	assert.True(t, p.LoginConfigured())
	assert.True(t, p.VerifyConfigured())
}

func TestList_SortedAndIncludesExtras(t *testing.T) {
	r := New([]Descriptor{{ID: "acme", Name: "Acme"}})
	list := r.List()
	require.NotEmpty(t, list)
	assert.Equal(t, "acme", list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestNew_SkipsInvalidExtraIDs(t *testing.T) {
	r := New([]Descriptor{{ID: "  "}, {ID: "lead_hub"}, {ID: "ok-partner"}})
	_, ok := r.Resolve("lead_hub")
	assert.False(t, ok)
	_, ok = r.Resolve("ok-partner")
	assert.True(t, ok)
}
