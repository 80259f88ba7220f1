package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a/b/c", "a/b"},
		{"a", ""},
		{"", ".."},
		{"..", "../.."},
		{"../..", "../../.."},
		{"../a", ".."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Dir(tt.in), "Dir(%q)", tt.in)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		consumer, spec, want string
	}{
		{"a/b", "./c", "a/c"},
		{"a/b", "../c", "c"},
		{"a/b", "../../c", "../c"},
		{"a/b", "c", "a/c"},
		{"a/b", "c/d", "a/c/d"},
		{"a/b", "./././c", "a/c"},
		{"a/b", "./c/../d", "a/d"},
		{"main", "./lib/util", "lib/util"},
		{"main", "lib", "lib"},
		{"main", "../x", "../x"},
		{"main", "../../x", "../../x"},
		{"a/b/c", "..", "a"},
		{"a/b", "/x", "a/x"},
		{"main", "/x", "x"},
		{"a/b", "c//d/", "a/c/d"},
	}
	for _, tt := range tests {
		t.Run(tt.consumer+"|"+tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.consumer, tt.spec))
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	first := Resolve("x/y/z", "../w/./v")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve("x/y/z", "../w/./v"))
	}
}

func TestEscapes(t *testing.T) {
	assert.True(t, Escapes(".."))
	assert.True(t, Escapes("../c"))
	assert.False(t, Escapes("a/c"))
	assert.False(t, Escapes("..c"))
	assert.False(t, Escapes(""))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"allow", Allow},
		{"warn", Warn},
		{"reject", Reject},
		{"REJECT", Reject},
		{"", Warn},
	}
	for _, tt := range tests {
		p, err := ParsePolicy(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p, "ParsePolicy(%q)", tt.in)
	}

	_, err := ParsePolicy("ignore")
	assert.ErrorContains(t, err, "unknown escape policy")
}

func TestPolicyText(t *testing.T) {
	var p Policy
	require.NoError(t, p.UnmarshalText([]byte("reject")))
	assert.Equal(t, Reject, p)
	b, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reject", string(b))
	assert.Error(t, p.UnmarshalText([]byte("nope")))
}

func TestResolverPolicies(t *testing.T) {
	var warned []*EscapeError
	r := &Resolver{Policy: Warn, OnEscape: func(e *EscapeError) { warned = append(warned, e) }}

	m, err := r.Resolve("a/b", "./c")
	require.NoError(t, err)
	assert.Equal(t, "a/c", m)
	assert.Empty(t, warned)

	m, err = r.Resolve("a/b", "../../c")
	require.NoError(t, err)
	assert.Equal(t, "../c", m)
	require.Len(t, warned, 1)
	assert.Equal(t, "a/b", warned[0].Consumer)
	assert.Equal(t, "../../c", warned[0].Specifier)

	r = &Resolver{Policy: Allow, OnEscape: func(*EscapeError) { t.Fatal("allow must not report") }}
	m, err = r.Resolve("a", "../x")
	require.NoError(t, err)
	assert.Equal(t, "../x", m)

	r = &Resolver{Policy: Reject}
	m, err = r.Resolve("a", "../x")
	assert.Equal(t, "../x", m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEscapesRoot))
	var ee *EscapeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "../x", ee.Module)
	assert.Contains(t, err.Error(), `require "../x"`)
}

func TestResolveAll(t *testing.T) {
	r := &Resolver{Policy: Reject}
	out, err := r.ResolveAll("app/main", []string{"./a", "../b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/a", "b"}, out)

	out, err = r.ResolveAll("app/main", []string{"./a", "../../b", "./c"})
	assert.ErrorIs(t, err, ErrEscapesRoot)
	assert.Equal(t, []string{"app/a"}, out)
}
