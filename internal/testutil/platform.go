package testutil

import (
	"fmt"
	"io"

	"repost-sentinel/internal/sentinel"
)

// Report records one Report call on the FakePlatform.
type Report struct {
	ID     string
	Reason string
}

// Reply records one Reply call on the FakePlatform.
type Reply struct {
	ParentID  string
	Body      string
	CommentID string
}

// Removal records one RemoveSubmission or RemoveComment call.
type Removal struct {
	ID   string
	Spam bool
}

// FakePlatform is an in-memory sentinel.Platform. Canned data goes in the
// maps; moderation calls are recorded for assertions. Zero value is usable.
type FakePlatform struct {
	NewListings    map[string][]*sentinel.Submission
	TopListings    map[sentinel.TopPeriod][]*sentinel.Submission
	Submissions    map[string]*sentinel.Submission
	Live           map[string]*sentinel.LiveStatus
	Images         map[string][]byte
	Messages       []*sentinel.Message
	ModeratorLists map[string][]string

	Reports            []Report
	Replies            []Reply
	RemovedSubmissions []Removal
	RemovedComments    []Removal
	Distinguished      []string
	MarkedRead         []string
	AcceptedInvites    []string

	// Error injection. A non-nil value is returned by the matching call.
	ReportErr     error
	ReplyErr      error
	RemoveErr     error
	LiveStatusErr error

	nextComment int
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		NewListings:    make(map[string][]*sentinel.Submission),
		TopListings:    make(map[sentinel.TopPeriod][]*sentinel.Submission),
		Submissions:    make(map[string]*sentinel.Submission),
		Live:           make(map[string]*sentinel.LiveStatus),
		Images:         make(map[string][]byte),
		ModeratorLists: make(map[string][]string),
	}
}

func (p *FakePlatform) NewSubmissions(community string, limit int) ([]*sentinel.Submission, error) {
	subs := p.NewListings[community]
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (p *FakePlatform) TopSubmissions(community string, period sentinel.TopPeriod) ([]*sentinel.Submission, error) {
	return p.TopListings[period], nil
}

func (p *FakePlatform) FetchSubmission(id string) (*sentinel.Submission, error) {
	sub, ok := p.Submissions[id]
	if !ok {
		return nil, fmt.Errorf("no such submission: %s", id)
	}
	return sub, nil
}

func (p *FakePlatform) LiveStatus(id string) (*sentinel.LiveStatus, error) {
	if p.LiveStatusErr != nil {
		return nil, p.LiveStatusErr
	}
	if live, ok := p.Live[id]; ok {
		return live, nil
	}
	return &sentinel.LiveStatus{Status: sentinel.StatusActive}, nil
}

func (p *FakePlatform) Download(url string, w io.Writer) error {
	data, ok := p.Images[url]
	if !ok {
		return fmt.Errorf("no image at %s", url)
	}
	_, err := w.Write(data)
	return err
}

func (p *FakePlatform) Report(submissionID, reason string) error {
	if p.ReportErr != nil {
		return p.ReportErr
	}
	p.Reports = append(p.Reports, Report{ID: submissionID, Reason: reason})
	return nil
}

func (p *FakePlatform) Reply(submissionID, body string) (string, error) {
	if p.ReplyErr != nil {
		return "", p.ReplyErr
	}
	p.nextComment++
	id := fmt.Sprintf("t1_comment%d", p.nextComment)
	p.Replies = append(p.Replies, Reply{ParentID: submissionID, Body: body, CommentID: id})
	return id, nil
}

func (p *FakePlatform) RemoveSubmission(id string, spam bool) error {
	if p.RemoveErr != nil {
		return p.RemoveErr
	}
	p.RemovedSubmissions = append(p.RemovedSubmissions, Removal{ID: id, Spam: spam})
	return nil
}

func (p *FakePlatform) RemoveComment(id string, spam bool) error {
	if p.RemoveErr != nil {
		return p.RemoveErr
	}
	p.RemovedComments = append(p.RemovedComments, Removal{ID: id, Spam: spam})
	return nil
}

func (p *FakePlatform) DistinguishSticky(commentID string) error {
	p.Distinguished = append(p.Distinguished, commentID)
	return nil
}

func (p *FakePlatform) UnreadMessages() ([]*sentinel.Message, error) {
	return p.Messages, nil
}

func (p *FakePlatform) MarkRead(id string) error {
	p.MarkedRead = append(p.MarkedRead, id)
	return nil
}

func (p *FakePlatform) Moderators(community string) ([]string, error) {
	return p.ModeratorLists[community], nil
}

func (p *FakePlatform) AcceptModeratorInvite(community string) error {
	p.AcceptedInvites = append(p.AcceptedInvites, community)
	return nil
}

var _ sentinel.Platform = (*FakePlatform)(nil)
