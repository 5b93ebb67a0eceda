package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) (*Classifier, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClassifier("test-key", srv.URL, nil)
	require.NoError(t, err)
	return c, &calls
}

func TestNewClassifier_RequiresAPIKey(t *testing.T) {
	t.Setenv("CLASSIFIER_API_KEY", "")

	_, err := NewClassifier("", "", nil)
	require.Error(t, err)

	t.Setenv("CLASSIFIER_API_KEY", "env-key")
	c, err := NewClassifier("", "", nil)
	require.NoError(t, err)
	require.Equal(t, "env-key", c.apiKey)
}

func TestModerate_EmptyTextSkipsNetwork(t *testing.T) {
	c, calls := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"decision":"false","confidence":1,"violation_types":[]}`))
	})

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		v, err := c.Moderate(context.Background(), text, ContextKnowledge)
		require.NoError(t, err)
		require.Equal(t, SafeVerdict(), v)
	}
	require.Equal(t, int32(0), *calls)
}

func TestModerate_InvertedDecisionConvention(t *testing.T) {
	// "true" on the wire means compliant, "false" means violating.
	cases := []struct {
		wire string
		want Decision
	}{
		{`{"decision":"true","confidence":0.1,"violation_types":[]}`, DecisionSafe},
		{`{"decision":"false","confidence":0.95,"violation_types":["abusive"]}`, DecisionUnsafe},
		{`{"decision":"unknown","confidence":0.5,"violation_types":[]}`, DecisionUncertain},
	}

	for _, tc := range cases {
		body := tc.wire
		c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(body))
		})

		v, err := c.Moderate(context.Background(), "some text", ContextPersona)
		require.NoError(t, err)
		require.Equal(t, tc.want, v.Decision)
	}
}

func TestModerate_MalformedResponseYieldsDefault(t *testing.T) {
	bodies := []string{
		`not json at all`,
		`{"decision":"yes","confidence":0.5,"violation_types":[]}`,
		`{"decision":"false","confidence":1.5,"violation_types":[]}`,
		`{"decision":"false","confidence":0.9,"violation_types":["blasphemy"]}`,
		`{"decision":"false","confidence":0.9,"violation_types":[],"extra":true}`,
	}

	for _, body := range bodies {
		b := body
		c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(b))
		})

		v, err := c.Moderate(context.Background(), "some text", ContextComment)
		require.NoError(t, err, "body %q must be absorbed, not raised", b)
		require.Equal(t, DefaultVerdict(), v, "body %q", b)
	}
}

func TestModerate_ServerErrorIsTransient(t *testing.T) {
	c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Moderate(context.Background(), "some text", ContextKnowledge)
	require.Error(t, err)
	require.True(t, IsTransient(err))
}

func TestBuildInstruction_FallsBackToGenericRules(t *testing.T) {
	require.Contains(t, buildInstruction(ContextKnowledge), "knowledge article")
	require.Contains(t, buildInstruction(ContextPersona), "persona card")
	require.Contains(t, buildInstruction(Context("podcast")), "user-submitted content")

	// Every instruction carries the base contract.
	for _, ctx := range []Context{ContextKnowledge, ContextPersona, ContextComment, Context("")} {
		require.Contains(t, buildInstruction(ctx), `"violation_types"`)
	}
}
