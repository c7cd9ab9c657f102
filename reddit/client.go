package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/flairmod/flairmod/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

const (
	defaultAPIHost  = "https://oauth.reddit.com"
	defaultAuthHost = "https://www.reddit.com"
)

// APIClient is the live implementation of Client, speaking the public JSON
// API with an OAuth2 script-app (password grant) session.
type APIClient struct {
	// Client is the HTTP client to use. If not set, defaults to
	// util.RobustHTTPClient().
	Client    *http.Client
	Host      string
	AuthHost  string
	UserAgent string
	// Limiter bounds outbound request rate to the platform's allowance.
	Limiter *rate.Limiter

	Auth AuthConfig

	tokenLk    sync.Mutex
	token      string
	tokenUntil time.Time
}

// AuthConfig holds script-app credentials for the password grant.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

func NewAPIClient(auth AuthConfig) *APIClient {
	return &APIClient{
		Client:    util.RobustHTTPClient(),
		Host:      defaultAPIHost,
		AuthHost:  defaultAuthHost,
		UserAgent: "flairmod/" + versioninfo.Short(),
		Limiter:   rate.NewLimiter(rate.Limit(1), 5),
		Auth:      auth,
	}
}

var _ Client = (*APIClient)(nil)

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit API error %d: %s", e.StatusCode, e.Body)
}

func (c *APIClient) getClient() *http.Client {
	if c.Client == nil {
		return util.RobustHTTPClient()
	}
	return c.Client
}

// ensureToken fetches or refreshes the OAuth access token when missing or
// near expiry.
func (c *APIClient) ensureToken(ctx context.Context) (string, error) {
	c.tokenLk.Lock()
	defer c.tokenLk.Unlock()

	if c.token != "" && time.Now().Add(time.Minute).Before(c.tokenUntil) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.Auth.Username)
	form.Set("password", c.Auth.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthHost+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.Auth.ClientID, c.Auth.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.getClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var tok struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding access token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("access token response contained no token")
	}
	c.token = tok.AccessToken
	c.tokenUntil = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// do executes one authenticated API call. GET requests encode params in the
// query string; POST requests send them as a form body. The response body is
// decoded into out when out is non-nil.
func (c *APIClient) do(ctx context.Context, method, path string, params url.Values, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	// raw_json avoids legacy HTML entity escaping in bodies
	params.Set("raw_json", "1")

	var body io.Reader
	uri := c.Host + path
	if method == http.MethodGet {
		uri += "?" + params.Encode()
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.getClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// thing is the generic kind/data envelope the listing endpoints return.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type submissionData struct {
	ID            string  `json:"id"`
	Subreddit     string  `json:"subreddit"`
	Author        string  `json:"author"`
	Title         string  `json:"title"`
	CreatedUTC    float64 `json:"created_utc"`
	LinkFlairText string  `json:"link_flair_text"`
}

func (sd *submissionData) submission() Submission {
	return Submission{
		ID:            sd.ID,
		Subreddit:     sd.Subreddit,
		Author:        sd.Author,
		Title:         sd.Title,
		CreatedAt:     time.Unix(int64(sd.CreatedUTC), 0),
		LinkFlairText: sd.LinkFlairText,
		Deleted:       sd.Author == "[deleted]",
	}
}

// jsonResult is the envelope returned by api_type=json procedure endpoints.
// Errors are triples of [code, message, field].
type jsonResult struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (r *jsonResult) errorCode() string {
	if len(r.JSON.Errors) == 0 || len(r.JSON.Errors[0]) == 0 {
		return ""
	}
	return r.JSON.Errors[0][0]
}

func (c *APIClient) Me(ctx context.Context) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *APIClient) ModeratedSubreddits(ctx context.Context) ([]string, error) {
	var subs []string
	after := ""
	for {
		params := url.Values{}
		params.Set("limit", "100")
		if after != "" {
			params.Set("after", after)
		}
		var page listing
		if err := c.do(ctx, http.MethodGet, "/subreddits/mine/moderator", params, &page); err != nil {
			return nil, err
		}
		for _, child := range page.Data.Children {
			var sub struct {
				DisplayName string `json:"display_name"`
			}
			if err := json.Unmarshal(child.Data, &sub); err != nil {
				return nil, err
			}
			subs = append(subs, sub.DisplayName)
		}
		after = page.Data.After
		if after == "" {
			break
		}
	}
	return subs, nil
}

func (c *APIClient) ListNewSubmissions(ctx context.Context, subreddit string) ([]Submission, error) {
	params := url.Values{}
	params.Set("limit", "100")
	var page listing
	if err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/new", params, &page); err != nil {
		return nil, err
	}
	var subs []Submission
	for _, child := range page.Data.Children {
		var sd submissionData
		if err := json.Unmarshal(child.Data, &sd); err != nil {
			return nil, err
		}
		subs = append(subs, sd.submission())
	}
	return subs, nil
}

func (c *APIClient) FetchSubmission(ctx context.Context, submissionID string) (*Submission, error) {
	params := url.Values{}
	params.Set("id", "t3_"+submissionID)
	var page listing
	if err := c.do(ctx, http.MethodGet, "/api/info", params, &page); err != nil {
		return nil, err
	}
	if len(page.Data.Children) == 0 {
		return nil, ErrNotFound
	}
	var sd submissionData
	if err := json.Unmarshal(page.Data.Children[0].Data, &sd); err != nil {
		return nil, err
	}
	sub := sd.submission()
	return &sub, nil
}

func (c *APIClient) CreateReply(ctx context.Context, submissionID, text string) (string, error) {
	return c.comment(ctx, "t3_"+submissionID, text)
}

func (c *APIClient) ReplyToMessage(ctx context.Context, messageID, text string) error {
	_, err := c.comment(ctx, "t4_"+messageID, text)
	return err
}

func (c *APIClient) comment(ctx context.Context, parentFullname, text string) (string, error) {
	params := url.Values{}
	params.Set("api_type", "json")
	params.Set("thing_id", parentFullname)
	params.Set("text", text)
	var res jsonResult
	if err := c.do(ctx, http.MethodPost, "/api/comment", params, &res); err != nil {
		return "", err
	}
	if code := res.errorCode(); code != "" {
		return "", fmt.Errorf("comment on %s rejected: %s", parentFullname, code)
	}
	if len(res.JSON.Data.Things) == 0 {
		return "", fmt.Errorf("comment on %s returned no thing", parentFullname)
	}
	var cd struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(res.JSON.Data.Things[0].Data, &cd); err != nil {
		return "", err
	}
	return cd.ID, nil
}

func (c *APIClient) DeleteComment(ctx context.Context, commentID string) error {
	params := url.Values{}
	params.Set("id", "t1_"+commentID)
	return c.do(ctx, http.MethodPost, "/api/del", params, nil)
}

func (c *APIClient) RemoveSubmission(ctx context.Context, submissionID string) error {
	return c.remove(ctx, "t3_"+submissionID)
}

func (c *APIClient) RemoveComment(ctx context.Context, commentID string) error {
	return c.remove(ctx, "t1_"+commentID)
}

func (c *APIClient) remove(ctx context.Context, fullname string) error {
	params := url.Values{}
	params.Set("id", fullname)
	params.Set("spam", "false")
	return c.do(ctx, http.MethodPost, "/api/remove", params, nil)
}

func (c *APIClient) ApproveSubmission(ctx context.Context, submissionID string) error {
	params := url.Values{}
	params.Set("id", "t3_"+submissionID)
	return c.do(ctx, http.MethodPost, "/api/approve", params, nil)
}

// commentNode is a comment as returned inside a comment-tree listing. The
// replies field is either an empty string or a nested listing.
type commentNode struct {
	ID      string          `json:"id"`
	Replies json.RawMessage `json:"replies"`
}

func (c *APIClient) FetchReplyTree(ctx context.Context, submissionID, commentID string) ([]string, error) {
	params := url.Values{}
	params.Set("comment", commentID)
	params.Set("limit", "500")
	params.Set("depth", "10")
	// response is a two-element array: the submission listing, then the
	// comment tree rooted at the requested comment
	var pages []listing
	if err := c.do(ctx, http.MethodGet, "/comments/"+submissionID, params, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 || len(pages[1].Data.Children) == 0 {
		return nil, nil
	}

	var ids []string
	var pendingMore []string
	var walk func(t thing) error
	walk = func(t thing) error {
		if t.Kind == "more" {
			var more struct {
				Children []string `json:"children"`
			}
			if err := json.Unmarshal(t.Data, &more); err != nil {
				return err
			}
			pendingMore = append(pendingMore, more.Children...)
			return nil
		}
		var node commentNode
		if err := json.Unmarshal(t.Data, &node); err != nil {
			return err
		}
		if node.ID != commentID {
			ids = append(ids, node.ID)
		}
		if len(node.Replies) == 0 || node.Replies[0] == '"' {
			return nil
		}
		var nested listing
		if err := json.Unmarshal(node.Replies, &nested); err != nil {
			return err
		}
		for _, child := range nested.Data.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(pages[1].Data.Children[0]); err != nil {
		return nil, err
	}

	// expand deferred continuations until none remain
	for len(pendingMore) > 0 {
		batch := pendingMore
		if len(batch) > 100 {
			batch = batch[:100]
		}
		pendingMore = pendingMore[len(batch):]

		params := url.Values{}
		params.Set("api_type", "json")
		params.Set("link_id", "t3_"+submissionID)
		params.Set("children", strings.Join(batch, ","))
		var res jsonResult
		if err := c.do(ctx, http.MethodPost, "/api/morechildren", params, &res); err != nil {
			return nil, err
		}
		for _, t := range res.JSON.Data.Things {
			if t.Kind == "more" {
				var more struct {
					Children []string `json:"children"`
				}
				if err := json.Unmarshal(t.Data, &more); err != nil {
					return nil, err
				}
				pendingMore = append(pendingMore, more.Children...)
				continue
			}
			var node commentNode
			if err := json.Unmarshal(t.Data, &node); err != nil {
				return nil, err
			}
			ids = append(ids, node.ID)
		}
	}
	return ids, nil
}

func (c *APIClient) ListUnreadInbox(ctx context.Context, limit int) ([]Message, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprint(limit))
	var page listing
	if err := c.do(ctx, http.MethodGet, "/message/unread", params, &page); err != nil {
		return nil, err
	}
	var msgs []Message
	for _, child := range page.Data.Children {
		var md struct {
			ID        string `json:"id"`
			Body      string `json:"body"`
			Subreddit string `json:"subreddit"`
			Author    string `json:"author"`
		}
		if err := json.Unmarshal(child.Data, &md); err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{
			ID:        md.ID,
			Body:      md.Body,
			Subreddit: md.Subreddit,
			Author:    md.Author,
		})
	}
	return msgs, nil
}

func (c *APIClient) MarkRead(ctx context.Context, messageID string) error {
	params := url.Values{}
	params.Set("id", "t4_"+messageID)
	return c.do(ctx, http.MethodPost, "/api/read_message", params, nil)
}

func (c *APIClient) AcceptModeratorInvite(ctx context.Context, subreddit string) error {
	params := url.Values{}
	params.Set("api_type", "json")
	var res jsonResult
	if err := c.do(ctx, http.MethodPost, "/r/"+subreddit+"/api/accept_moderator_invite", params, &res); err != nil {
		return err
	}
	switch code := res.errorCode(); code {
	case "":
		return nil
	case "NO_INVITE_FOUND":
		return ErrNoInvite
	default:
		return fmt.Errorf("accepting moderator invite for r/%s: %s", subreddit, code)
	}
}

func (c *APIClient) ListModerators(ctx context.Context, subreddit string) ([]Moderator, error) {
	var out struct {
		Data struct {
			Children []struct {
				Name           string   `json:"name"`
				ModPermissions []string `json:"mod_permissions"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/about/moderators", nil, &out); err != nil {
		return nil, err
	}
	var mods []Moderator
	for _, child := range out.Data.Children {
		mods = append(mods, Moderator{Name: child.Name, Permissions: child.ModPermissions})
	}
	return mods, nil
}

func (c *APIClient) LeaveModerator(ctx context.Context, subreddit string) error {
	// /api/leavemoderator wants the subreddit fullname, not its name
	var about struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/r/"+subreddit+"/about", nil, &about); err != nil {
		return err
	}
	params := url.Values{}
	params.Set("id", about.Data.Name)
	return c.do(ctx, http.MethodPost, "/api/leavemoderator", params, nil)
}
