// Package api is the REST client for the family-tree backend. Every response
// arrives in a {data, message} envelope; error responses carry a
// human-readable message that is surfaced verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/meowlet/family-tree-fe/internal/errs"
	"github.com/meowlet/family-tree-fe/internal/model"
)

// TokenStore abstracts where the access token lives. The browser build backs
// it with localStorage; tests use an in-memory store.
type TokenStore interface {
	Token() string
	SetToken(string) error
	ClearToken()
}

// Error is a failed API call: the HTTP status plus the server's message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap maps well-known statuses onto sentinels so callers can errors.Is.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	}
	return nil
}

// Client talks to the backend through the host's /api prefix. A 401 on any
// non-auth endpoint drops the stored token; the view layer reacts by
// navigating to the sign-in page.
type Client struct {
	base   string
	hc     *http.Client
	tokens TokenStore
}

// New creates a Client rooted at base (no trailing slash).
func New(base string, tokens TokenStore) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     http.DefaultClient,
		tokens: tokens,
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do runs one request and decodes the envelope. out may be nil when the
// caller only cares about success. The returned message is the envelope's
// message field on success.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) (string, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+strings.TrimLeft(path, "/"), rd)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 400 {
			return "", &Error{Status: resp.StatusCode}
		}
		return "", err
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && !authPath(path) {
			c.tokens.ClearToken()
		}
		return "", &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", err
		}
	}
	return env.Message, nil
}

// authPath reports whether a 401 from this endpoint means bad credentials
// rather than a dead session.
func authPath(path string) bool {
	p := strings.TrimLeft(path, "/")
	return strings.HasPrefix(p, "auth/signin") || strings.HasPrefix(p, "auth/signup")
}

// ---- auth ----

type tokenData struct {
	Token string `json:"token"`
}

// SignIn exchanges credentials for an access token and stores it.
func (c *Client) SignIn(ctx context.Context, identifier, password string) error {
	var td tokenData
	_, err := c.do(ctx, http.MethodPost, "auth/signin", map[string]any{
		"identifier": identifier,
		"password":   password,
	}, &td)
	if err != nil {
		return err
	}
	return c.tokens.SetToken(td.Token)
}

// SignUpParams is the registration payload.
type SignUpParams struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"passwordHash"`
}

// SignUp registers a new account and stores the returned token.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) error {
	var td tokenData
	_, err := c.do(ctx, http.MethodPost, "auth/signup", p, &td)
	if err != nil {
		return err
	}
	return c.tokens.SetToken(td.Token)
}

// TempUserParams describes a placeholder person who is not an account holder.
type TempUserParams struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
	HomeTown string `json:"homeTown"`
}

// SignUpTemp creates a placeholder user and returns its id.
func (c *Client) SignUpTemp(ctx context.Context, p TempUserParams) (string, error) {
	var u model.User
	if _, err := c.do(ctx, http.MethodPost, "auth/signup/temp", p, &u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// RequestPasswordReset asks for a reset email.
func (c *Client) RequestPasswordReset(ctx context.Context, identifier string) (string, error) {
	return c.do(ctx, http.MethodPost, "auth/password/reset", map[string]any{
		"identifier": identifier,
	}, nil)
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return c.do(ctx, http.MethodPost, "auth/password/reset/"+url.PathEscape(token), map[string]any{
		"password": password,
	}, nil)
}

// SignOut drops the stored token.
func (c *Client) SignOut() { c.tokens.ClearToken() }

// ---- users ----

// Me returns the current viewer.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	_, err := c.do(ctx, http.MethodGet, "user/me", nil, &u)
	return u, err
}

// SearchUsers fuzzy-searches users by name or username. An empty query makes
// no request and returns no results.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	var users []model.User
	_, err := c.do(ctx, http.MethodGet, "user?query="+url.QueryEscape(query), nil, &users)
	return users, err
}

// ---- trees ----

// Trees lists the viewer's created and member trees.
func (c *Client) Trees(ctx context.Context) (model.TreeList, error) {
	var tl model.TreeList
	_, err := c.do(ctx, http.MethodGet, "tree", nil, &tl)
	return tl, err
}

// Tree fetches one tree's header and flat node list.
func (c *Client) Tree(ctx context.Context, treeID string) (model.TreeData, error) {
	var td model.TreeData
	_, err := c.do(ctx, http.MethodGet, "tree/"+url.PathEscape(treeID), nil, &td)
	return td, err
}

// CreateTree creates a new family tree.
func (c *Client) CreateTree(ctx context.Context, name, description string) (string, error) {
	return c.do(ctx, http.MethodPost, "tree", map[string]any{
		"name":        name,
		"description": description,
	}, nil)
}

// DeleteTree removes a tree entirely.
func (c *Client) DeleteTree(ctx context.Context, treeID string) (string, error) {
	return c.do(ctx, http.MethodDelete, "tree/"+url.PathEscape(treeID), nil, nil)
}

// ---- nodes ----

// NodeInfo fetches one node with its user populated.
func (c *Client) NodeInfo(ctx context.Context, nodeID string) (model.Node, error) {
	var n model.Node
	_, err := c.do(ctx, http.MethodGet, "node/"+url.PathEscape(nodeID), nil, &n)
	return n, err
}

// NodeParams is the create-node payload. Empty optional dates and references
// are transmitted as null, never as empty strings.
type NodeParams struct {
	NodeID       string // set only when creating the pre-assigned root
	FamilyTreeID string
	UserID       string
	ParentNodeID string
	Gender       bool
	BirthDate    string
	DeathDate    string
	SpouseID     string
	MarriageDate string
}

func (p NodeParams) payload() map[string]any {
	body := map[string]any{
		"familyTree":   p.FamilyTreeID,
		"user":         p.UserID,
		"parentNode":   orNull(p.ParentNodeID),
		"gender":       p.Gender,
		"birthDate":    orNull(p.BirthDate),
		"deathDate":    orNull(p.DeathDate),
		"spouse":       orNull(p.SpouseID),
		"marriageDate": orNull(p.MarriageDate),
	}
	if p.NodeID != "" {
		body["nodeId"] = p.NodeID
	}
	return body
}

// CreateNode creates a node and returns it with its assigned id.
func (c *Client) CreateNode(ctx context.Context, p NodeParams) (model.Node, error) {
	var n model.Node
	_, err := c.do(ctx, http.MethodPost, "node", p.payload(), &n)
	return n, err
}

// NodeUpdate is the partial update payload for PUT node/{id}.
type NodeUpdate struct {
	UserID       string
	Gender       bool
	BirthDate    string
	DeathDate    string
	SpouseID     string
	MarriageDate string
}

// UpdateNode sends a partial update of a node's editable fields.
func (c *Client) UpdateNode(ctx context.Context, nodeID string, u NodeUpdate) error {
	body := map[string]any{
		"user":         u.UserID,
		"gender":       u.Gender,
		"birthDate":    orNull(u.BirthDate),
		"deathDate":    orNull(u.DeathDate),
		"spouse":       orNull(u.SpouseID),
		"marriageDate": orNull(u.MarriageDate),
	}
	_, err := c.do(ctx, http.MethodPut, "node/"+url.PathEscape(nodeID), body, nil)
	return err
}

// PairSpouse links two nodes as spouses in a single request; the server owns
// the symmetric update on both sides.
func (c *Client) PairSpouse(ctx context.Context, firstID, secondID, marriageDate string) error {
	_, err := c.do(ctx, http.MethodPost, "node/spouse", map[string]any{
		"firstOneId":   firstID,
		"secondOneId":  secondID,
		"marriageDate": orNull(marriageDate),
	}, nil)
	return err
}

// DeleteNode soft-deletes: the node's user is detached, the node stays for
// its descendants.
func (c *Client) DeleteNode(ctx context.Context, nodeID string) error {
	_, err := c.do(ctx, http.MethodDelete, "node/"+url.PathEscape(nodeID), nil, nil)
	return err
}

// ForceDeleteNode removes an already tombstoned node entirely.
func (c *Client) ForceDeleteNode(ctx context.Context, nodeID string) error {
	_, err := c.do(ctx, http.MethodDelete, "node/force/"+url.PathEscape(nodeID), nil, nil)
	return err
}

func orNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}
