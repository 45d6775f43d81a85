package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowlet/family-tree-fe/internal/errs"
)

type call struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// recorder is a scripted backend: it records every call and answers with the
// queued response.
type recorder struct {
	calls  []call
	status int
	reply  string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c := call{method: req.Method, path: req.URL.Path, query: req.URL.RawQuery}
	if req.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err == nil {
			c.body = body
		}
	}
	r.calls = append(r.calls, c)

	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	reply := r.reply
	if reply == "" {
		reply = `{"data":null,"message":"ok"}`
	}
	fmt.Fprint(w, reply)
}

func newTestClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return New(srv.URL, &MemoryTokenStore{})
}

func TestSignIn_StoresToken(t *testing.T) {
	rec := &recorder{reply: `{"data":{"token":"tok-123"},"message":"welcome"}`}
	c := newTestClient(t, rec)

	require.NoError(t, c.SignIn(context.Background(), "meow", "secret1"))
	assert.Equal(t, "tok-123", c.tokens.Token())

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "/auth/signin", rec.calls[0].path)
	assert.Equal(t, "meow", rec.calls[0].body["identifier"])
}

func TestDo_BearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		fmt.Fprint(w, `{"data":{"_id":"u1"},"message":""}`)
	}))
	defer srv.Close()

	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SetToken("tok-abc"))
	c := New(srv.URL, tokens)

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestError_SurfacesServerMessageVerbatim(t *testing.T) {
	rec := &recorder{status: http.StatusForbidden, reply: `{"data":null,"message":"you are not allowed to edit this node"}`}
	c := newTestClient(t, rec)

	_, err := c.Tree(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, "you are not allowed to edit this node", err.Error())
}

func TestUnauthorized_DropsTokenAndMapsSentinel(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized, reply: `{"data":null,"message":"token expired"}`}
	c := newTestClient(t, rec)
	require.NoError(t, c.tokens.SetToken("stale"))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
	assert.Empty(t, c.tokens.Token(), "dead session token must be dropped")
}

func TestUnauthorized_OnSignInKeepsNothing(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized, reply: `{"data":null,"message":"wrong password"}`}
	c := newTestClient(t, rec)

	err := c.SignIn(context.Background(), "meow", "nope")
	require.Error(t, err)
	assert.Equal(t, "wrong password", err.Error())
}

func TestSearchUsers_EmptyQueryMakesNoRequest(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	users, err := c.SearchUsers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, users)
	assert.Empty(t, rec.calls)
}

func TestSearchUsers_QueryEncoded(t *testing.T) {
	rec := &recorder{reply: `{"data":[{"_id":"u1","fullName":"Chúc Nguyệt"}],"message":""}`}
	c := newTestClient(t, rec)

	users, err := c.SearchUsers(context.Background(), "chúc n")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "/user", rec.calls[0].path)
	assert.Contains(t, rec.calls[0].query, "query=")
}

func TestCreateNode_EmptyDatesSentAsNull(t *testing.T) {
	rec := &recorder{reply: `{"data":{"_id":"n9"},"message":"created"}`}
	c := newTestClient(t, rec)

	n, err := c.CreateNode(context.Background(), NodeParams{
		FamilyTreeID: "t1",
		UserID:       "u1",
		ParentNodeID: "n1",
		Gender:       true,
		BirthDate:    "1990-01-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "n9", n.ID)

	body := rec.calls[0].body
	assert.Equal(t, "1990-01-02", body["birthDate"])
	assert.Nil(t, body["deathDate"])
	assert.Nil(t, body["marriageDate"])
	assert.Nil(t, body["spouse"])
	_, hasNodeID := body["nodeId"]
	assert.False(t, hasNodeID)
}

func TestCreateNode_RootCarriesPreassignedID(t *testing.T) {
	rec := &recorder{reply: `{"data":{"_id":"root-1"},"message":""}`}
	c := newTestClient(t, rec)

	_, err := c.CreateNode(context.Background(), NodeParams{
		NodeID:       "root-1",
		FamilyTreeID: "t1",
		UserID:       "u1",
	})
	require.NoError(t, err)
	body := rec.calls[0].body
	assert.Equal(t, "root-1", body["nodeId"])
	assert.Nil(t, body["parentNode"])
}

func TestPairSpouse_Payload(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	require.NoError(t, c.PairSpouse(context.Background(), "a", "b", ""))
	body := rec.calls[0].body
	assert.Equal(t, "/node/spouse", rec.calls[0].path)
	assert.Equal(t, "a", body["firstOneId"])
	assert.Equal(t, "b", body["secondOneId"])
	assert.Nil(t, body["marriageDate"])
}

func TestDeleteVariants(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	require.NoError(t, c.DeleteNode(context.Background(), "n1"))
	require.NoError(t, c.ForceDeleteNode(context.Background(), "n1"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "/node/n1", rec.calls[0].path)
	assert.Equal(t, "/node/force/n1", rec.calls[1].path)
	assert.Equal(t, http.MethodDelete, rec.calls[0].method)
	assert.Equal(t, http.MethodDelete, rec.calls[1].method)
}

func TestTree_DecodesEnvelope(t *testing.T) {
	rec := &recorder{reply: `{"data":{"treeInfo":{"_id":"t1","name":"Ours","creator":"u1","admin":["u2"],"rootNode":"n1"},"treeNodes":[{"_id":"n1","familyTree":"t1","user":{"_id":"u1","fullName":"Root"},"parentNode":null,"spouse":null,"gender":true}]},"message":""}`}
	c := newTestClient(t, rec)

	td, err := c.Tree(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Ours", td.TreeInfo.Name)
	assert.Equal(t, []string{"u2"}, td.TreeInfo.AdminUserIDs)
	require.Len(t, td.TreeNodes, 1)
	assert.Equal(t, "n1", td.TreeNodes[0].ID)
	assert.Empty(t, td.TreeNodes[0].ParentNodeID)
	assert.Empty(t, td.TreeNodes[0].SpouseID)
}

// ---- token liveness ----

func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func TestTokenAlive(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	assert.False(t, TokenAlive(""))
	assert.True(t, TokenAlive(unsignedJWT(t, map[string]any{"exp": future})))
	assert.False(t, TokenAlive(unsignedJWT(t, map[string]any{"exp": past})))
	assert.True(t, TokenAlive(unsignedJWT(t, map[string]any{"sub": "u1"})), "no exp claim, server decides")
	assert.True(t, TokenAlive("opaque-session-token"), "non-JWT tokens pass through")
}
