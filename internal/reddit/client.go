// Package reddit implements the sentinel.Platform interface against the
// public reddit REST API using an OAuth2 password-grant token.
package reddit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"repost-sentinel/internal/sentinel"
)

const (
	defaultAPIBaseURL = "https://oauth.reddit.com"
	defaultTokenURL   = "https://www.reddit.com/api/v1/access_token"

	requestTimeout = 30 * time.Second

	// listingPageSize is the API's maximum page size for listings.
	listingPageSize = 100

	// tokenExpirySlack refreshes the token slightly before the API would
	// reject it.
	tokenExpirySlack = time.Minute
)

// Credentials holds the script-app credentials for the bot account.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Client is a sentinel.Platform implementation. It is not safe for
// concurrent use, which matches the single-threaded poll loop.
type Client struct {
	httpClient *http.Client
	creds      Credentials

	apiBaseURL string
	tokenURL   string

	maxDownloadBytes int64

	token       string
	tokenExpiry time.Time
}

// NewClient creates a Client. maxDownloadBytes caps a single image download.
func NewClient(creds Credentials, maxDownloadBytes int64) *Client {
	return &Client{
		httpClient:       &http.Client{Timeout: requestTimeout},
		creds:            creds,
		apiBaseURL:       defaultAPIBaseURL,
		tokenURL:         defaultTokenURL,
		maxDownloadBytes: maxDownloadBytes,
	}
}

// Wire shapes. Listings arrive as kinded envelopes with the payload under
// "data".

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		Children []thing `json:"children"`
		After    string  `json:"after"`
	} `json:"data"`
}

type postData struct {
	ID            string  `json:"id"`
	Subreddit     string  `json:"subreddit"`
	CreatedUTC    float64 `json:"created_utc"`
	Author        string  `json:"author"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	NumComments   int     `json:"num_comments"`
	Score         int     `json:"score"`
	IsSelf        bool    `json:"is_self"`
	BannedBy      *string `json:"banned_by"`
	RemovalReason *string `json:"removal_reason"`
}

type messageData struct {
	Name       string `json:"name"`
	Author     string `json:"author"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Subreddit  string `json:"subreddit"`
	WasComment bool   `json:"was_comment"`
}

func (p *postData) toSubmission() *sentinel.Submission {
	sub := &sentinel.Submission{
		ID:        p.ID,
		Community: p.Subreddit,
		Created:   time.Unix(int64(p.CreatedUTC), 0).UTC(),
		Author:    p.Author,
		Title:     p.Title,
		URL:       p.URL,
		Comments:  p.NumComments,
		Score:     p.Score,
		Deleted:   p.Author == "[deleted]",
		Removed:   p.BannedBy != nil,
		SelfPost:  p.IsSelf,
	}
	if p.RemovalReason != nil {
		sub.RemovalReason = *p.RemovalReason
	}
	return sub
}

func (p *postData) toLiveStatus() *sentinel.LiveStatus {
	status := sentinel.StatusActive
	switch {
	case p.BannedBy != nil:
		status = sentinel.StatusRemoved
	case p.Author == "[deleted]":
		status = sentinel.StatusDeleted
	}
	return &sentinel.LiveStatus{Score: p.Score, Comments: p.NumComments, Status: status}
}

// NewSubmissions returns up to limit of the newest submissions, paging
// through the listing as needed.
func (c *Client) NewSubmissions(community string, limit int) ([]*sentinel.Submission, error) {
	return c.listPosts("/r/"+url.PathEscape(community)+"/new", url.Values{}, limit)
}

// TopSubmissions returns one page of top-scored submissions for a period.
func (c *Client) TopSubmissions(community string, period sentinel.TopPeriod) ([]*sentinel.Submission, error) {
	query := url.Values{"t": {string(period)}}
	return c.listPosts("/r/"+url.PathEscape(community)+"/top", query, listingPageSize)
}

func (c *Client) listPosts(path string, query url.Values, limit int) ([]*sentinel.Submission, error) {
	var result []*sentinel.Submission
	after := ""

	for len(result) < limit {
		page := limit - len(result)
		if page > listingPageSize {
			page = listingPageSize
		}
		query.Set("limit", strconv.Itoa(page))
		query.Set("raw_json", "1")
		if after != "" {
			query.Set("after", after)
		}

		var l listing
		if err := c.get(path, query, &l); err != nil {
			return nil, err
		}

		for _, child := range l.Data.Children {
			var p postData
			if err := json.Unmarshal(child.Data, &p); err != nil {
				return nil, &sentinel.Fault{Kind: sentinel.FaultBadPayload, Err: err}
			}
			result = append(result, p.toSubmission())
		}

		after = l.Data.After
		if after == "" || len(l.Data.Children) == 0 {
			break
		}
	}
	return result, nil
}

// FetchSubmission returns a single submission by id.
func (c *Client) FetchSubmission(id string) (*sentinel.Submission, error) {
	p, err := c.fetchPost(id)
	if err != nil {
		return nil, err
	}
	return p.toSubmission(), nil
}

// LiveStatus returns the current score, comment count and status of a
// submission.
func (c *Client) LiveStatus(id string) (*sentinel.LiveStatus, error) {
	p, err := c.fetchPost(id)
	if err != nil {
		return nil, err
	}
	return p.toLiveStatus(), nil
}

func (c *Client) fetchPost(id string) (*postData, error) {
	query := url.Values{"id": {"t3_" + id}, "raw_json": {"1"}}
	var l listing
	if err := c.get("/api/info", query, &l); err != nil {
		return nil, err
	}
	if len(l.Data.Children) == 0 {
		return nil, &sentinel.Fault{
			Kind: sentinel.FaultAPI,
			Err:  fmt.Errorf("submission %s not found", id),
		}
	}
	var p postData
	if err := json.Unmarshal(l.Data.Children[0].Data, &p); err != nil {
		return nil, &sentinel.Fault{Kind: sentinel.FaultBadPayload, Err: err}
	}
	return &p, nil
}

// Download streams the raw bytes at rawURL into w. This goes to the media
// host directly, outside the authenticated API.
func (c *Client) Download(rawURL string, w io.Writer) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	if _, err := io.Copy(w, io.LimitReader(resp.Body, c.maxDownloadBytes)); err != nil {
		return fmt.Errorf("reading download body: %w", err)
	}
	return nil
}

// Report flags a submission for moderator review.
func (c *Client) Report(submissionID, reason string) error {
	form := url.Values{
		"thing_id": {"t3_" + submissionID},
		"reason":   {reason},
		"api_type": {"json"},
	}
	return c.post("/api/report", form, nil)
}

// Reply posts a comment under a submission and returns the comment fullname.
func (c *Client) Reply(submissionID, body string) (string, error) {
	form := url.Values{
		"thing_id": {"t3_" + submissionID},
		"text":     {body},
		"api_type": {"json"},
	}

	var resp struct {
		JSON struct {
			Data struct {
				Things []struct {
					Data struct {
						Name string `json:"name"`
					} `json:"data"`
				} `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := c.post("/api/comment", form, &resp); err != nil {
		return "", err
	}
	if len(resp.JSON.Data.Things) == 0 {
		return "", &sentinel.Fault{
			Kind: sentinel.FaultBadPayload,
			Err:  fmt.Errorf("reply to %s returned no comment", submissionID),
		}
	}
	return resp.JSON.Data.Things[0].Data.Name, nil
}

// RemoveSubmission removes a submission as a moderator action.
func (c *Client) RemoveSubmission(id string, spam bool) error {
	return c.remove("t3_"+id, spam)
}

// RemoveComment removes a comment by fullname (as returned by Reply).
func (c *Client) RemoveComment(id string, spam bool) error {
	return c.remove(id, spam)
}

func (c *Client) remove(fullname string, spam bool) error {
	form := url.Values{
		"id":   {fullname},
		"spam": {strconv.FormatBool(spam)},
	}
	return c.post("/api/remove", form, nil)
}

// DistinguishSticky marks a comment as a distinguished, pinned moderator
// comment.
func (c *Client) DistinguishSticky(commentID string) error {
	form := url.Values{
		"id":       {commentID},
		"how":      {"yes"},
		"sticky":   {"true"},
		"api_type": {"json"},
	}
	return c.post("/api/distinguish", form, nil)
}

// UnreadMessages returns the unread inbox items.
func (c *Client) UnreadMessages() ([]*sentinel.Message, error) {
	query := url.Values{"limit": {strconv.Itoa(listingPageSize)}, "raw_json": {"1"}}
	var l listing
	if err := c.get("/message/unread", query, &l); err != nil {
		return nil, err
	}

	var result []*sentinel.Message
	for _, child := range l.Data.Children {
		var m messageData
		if err := json.Unmarshal(child.Data, &m); err != nil {
			return nil, &sentinel.Fault{Kind: sentinel.FaultBadPayload, Err: err}
		}
		result = append(result, &sentinel.Message{
			ID:        m.Name,
			Author:    m.Author,
			Subject:   m.Subject,
			Body:      m.Body,
			Community: m.Subreddit,
			IsMessage: child.Kind == "t4" && !m.WasComment,
		})
	}
	return result, nil
}

// MarkRead marks one inbox item as read.
func (c *Client) MarkRead(id string) error {
	return c.post("/api/read_message", url.Values{"id": {id}}, nil)
}

// Moderators returns the usernames moderating a community.
func (c *Client) Moderators(community string) ([]string, error) {
	var resp struct {
		Data struct {
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.get("/r/"+url.PathEscape(community)+"/about/moderators", url.Values{"raw_json": {"1"}}, &resp); err != nil {
		return nil, err
	}

	names := make([]string, len(resp.Data.Children))
	for i, child := range resp.Data.Children {
		names[i] = child.Name
	}
	return names, nil
}

// AcceptModeratorInvite accepts a pending moderator invitation.
func (c *Client) AcceptModeratorInvite(community string) error {
	form := url.Values{"api_type": {"json"}}
	return c.post("/r/"+url.PathEscape(community)+"/api/accept_moderator_invite", form, nil)
}

// get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) get(path string, query url.Values, out any) error {
	return c.do(http.MethodGet, path, query, nil, out)
}

// post issues an authenticated form POST and decodes the JSON response into
// out when out is non-nil.
func (c *Client) post(path string, form url.Values, out any) error {
	return c.do(http.MethodPost, path, nil, form, out)
}

func (c *Client) do(method, path string, query, form url.Values, out any) error {
	if err := c.ensureToken(); err != nil {
		return err
	}

	endpoint := c.apiBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return &sentinel.Fault{Kind: sentinel.FaultClient, Err: err}
	}
	req.Header.Set("User-Agent", c.creds.UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &sentinel.Fault{Kind: sentinel.FaultTransient, Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(path, resp.StatusCode); err != nil {
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &sentinel.Fault{
			Kind: sentinel.FaultBadPayload,
			Err:  fmt.Errorf("decoding %s response: %w", path, err),
		}
	}
	return nil
}

// classifyStatus maps an HTTP status to the fault taxonomy the poll loop
// backs off on. Forbidden surfaces as ErrForbidden so enforcement can skip
// actions it lacks permissions for.
func classifyStatus(path string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusForbidden:
		return &sentinel.Fault{
			Kind: sentinel.FaultAPI,
			Err:  fmt.Errorf("%s: %w", path, sentinel.ErrForbidden),
		}
	case status == http.StatusUnauthorized:
		return &sentinel.Fault{
			Kind: sentinel.FaultAuth,
			Err:  fmt.Errorf("%s: status %d", path, status),
		}
	case status == http.StatusTooManyRequests || status >= 500:
		return &sentinel.Fault{
			Kind: sentinel.FaultTransient,
			Err:  fmt.Errorf("%s: status %d", path, status),
		}
	default:
		return &sentinel.Fault{
			Kind: sentinel.FaultAPI,
			Err:  fmt.Errorf("%s: status %d", path, status),
		}
	}
}

// ensureToken fetches or refreshes the OAuth2 token via the password grant.
func (c *Client) ensureToken() error {
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}
	req, err := http.NewRequest(http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &sentinel.Fault{Kind: sentinel.FaultClient, Err: err}
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("User-Agent", c.creds.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &sentinel.Fault{Kind: sentinel.FaultTransient, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &sentinel.Fault{
			Kind: sentinel.FaultAuth,
			Err:  fmt.Errorf("token request: status %d", resp.StatusCode),
		}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return &sentinel.Fault{
			Kind: sentinel.FaultBadPayload,
			Err:  fmt.Errorf("decoding token response: %w", err),
		}
	}
	if token.AccessToken == "" {
		return &sentinel.Fault{
			Kind: sentinel.FaultAuth,
			Err:  fmt.Errorf("token request returned no token"),
		}
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return nil
}

// Compile-time check that Client implements the sentinel.Platform interface
var _ sentinel.Platform = (*Client)(nil)
