package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/pagewright/pkg/backend"
	"github.com/alantheprice/pagewright/pkg/classify"
	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/parser"
)

// stubProvider returns canned responses, optionally blocking until released.
type stubProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
	block     chan struct{}
	lastReq   backend.Request
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req backend.Request) (string, error) {
	p.mu.Lock()
	p.lastReq = req
	i := p.calls
	p.calls++
	block := p.block
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if i >= len(p.responses) {
		return "", backend.ErrEmptyResponse
	}
	return p.responses[i], nil
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.RenderDebounceMs = 0
	cfg.TrackHistory = false
	return cfg
}

func newTestSession(t *testing.T, p backend.Provider) *Session {
	t.Helper()
	s, err := New(Options{Config: testConfig(), Provider: p})
	require.NoError(t, err)
	return s
}

const fullDocument = "<!DOCTYPE html>\n<html><head></head><body><h1>New page</h1></body></html>"

func TestSendStagesProposalAndApproveCommits(t *testing.T) {
	p := &stubProvider{responses: []string{"Here you go:\n```html\n" + fullDocument + "\n```"}}
	s := newTestSession(t, p)

	result, err := s.Send(context.Background(), "build me a new website from scratch", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, classify.KindReplace, result.Proposal.Kind)
	assert.Equal(t, classify.ActionFullControl, result.Action)

	// Nothing committed yet.
	assert.Empty(t, s.Document())

	doc, err := s.Approve()
	require.NoError(t, err)
	assert.Equal(t, fullDocument, doc)
	assert.Equal(t, fullDocument, s.Document())
}

func TestFullDocumentDuringSurgicalActionIsFlaggedNotRejected(t *testing.T) {
	p := &stubProvider{responses: []string{"Sure.\n```html\n" + fullDocument + "\n```"}}
	s := newTestSession(t, p)
	s.SetDocument("<html><body><p>existing</p></body></html>", "template")

	result, err := s.Send(context.Background(), "change the heading text", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, classify.KindReplace, result.Proposal.Kind)
	assert.NotEmpty(t, result.Warnings, "full replacement on a surgical ask must warn before commit")
}

func TestSecondProposalEvictsFirst(t *testing.T) {
	p := &stubProvider{responses: []string{
		"```html\n<section>first</section>\n```",
		"```html\n<section>second</section>\n```",
	}}
	s := newTestSession(t, p)
	s.SetDocument("<html><body></body></html>", "template")

	first, err := s.Send(context.Background(), "add a section", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, first.Proposal)
	assert.False(t, first.Evicted)

	second, err := s.Send(context.Background(), "add another section", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, second.Proposal)
	assert.True(t, second.Evicted, "last proposal wins; the first is discarded")

	doc, err := s.Approve()
	require.NoError(t, err)
	assert.Contains(t, doc, "second")
	assert.NotContains(t, doc, "first")
}

func TestRejectLeavesDocumentUnchanged(t *testing.T) {
	p := &stubProvider{responses: []string{"```html\n<div>change</div>\n```"}}
	s := newTestSession(t, p)
	s.SetDocument("<html><body><p>keep me</p></body></html>", "template")

	_, err := s.Send(context.Background(), "add a div", SendOptions{})
	require.NoError(t, err)

	require.NoError(t, s.Reject())
	assert.Equal(t, "<html><body><p>keep me</p></body></html>", s.Document())

	_, err = s.Approve()
	assert.Error(t, err, "nothing should remain to approve after reject")
}

func TestSecondSendBlockedWhileInFlight(t *testing.T) {
	p := &stubProvider{
		responses: []string{"```html\n<p>slow</p>\n```"},
		block:     make(chan struct{}),
	}
	s := newTestSession(t, p)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first request", SendOptions{})
		done <- err
	}()

	// Wait for the first send to claim the slot.
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.calls == 1
	}, time.Second, time.Millisecond)

	_, err := s.Send(context.Background(), "second request", SendOptions{})
	assert.ErrorIs(t, err, ErrRequestInFlight)

	close(p.block)
	require.NoError(t, <-done)
}

func TestSelectedElementTargetsNextTurn(t *testing.T) {
	p := &stubProvider{responses: []string{"```html\n<h1>Better title</h1>\n```"}}
	s := newTestSession(t, p)
	s.SetDocument("<html><body><h1 id=\"title\">Old</h1></body></html>", "template")

	el, ok := s.SelectElement("#title")
	require.True(t, ok)
	assert.Equal(t, "h1", el.TagName)

	result, err := s.Send(context.Background(), "make the title better", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, classify.KindElement, result.Proposal.Kind)
	assert.Equal(t, "#title", result.Proposal.TargetSelector)

	// The selected-element context is folded into the user turn.
	lastUser := p.lastReq.Messages[len(p.lastReq.Messages)-1]
	assert.Contains(t, lastUser.Content, "#title")

	doc, err := s.Approve()
	require.NoError(t, err)
	assert.Contains(t, doc, "Better title")
	assert.NotContains(t, doc, ">Old<")
}

func TestBuilderActionsStagedSeparatelyAndConfirmed(t *testing.T) {
	p := &stubProvider{responses: []string{`Installing now. <action type="install_pack" pack="booking"/>`}}
	s := newTestSession(t, p)
	s.SetDocument("<html><body></body></html>", "template")

	executed := make(chan []parser.BuilderAction, 1)
	s.executor = executorFunc(func(_ context.Context, acts []parser.BuilderAction) ([]string, error) {
		executed <- acts
		return []string{"install_pack"}, nil
	})

	result, err := s.Send(context.Background(), "install the booking pack", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ActionsPending)
	assert.Nil(t, result.Proposal, "builder actions never become a document mutation")
	assert.Equal(t, "<html><body></body></html>", s.Document())

	applied, err := s.ConfirmActions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"install_pack"}, applied)
	require.Len(t, <-executed, 1)
	assert.Empty(t, s.PendingActions())
}

func TestConfirmActionsRestagesBatchOnFailure(t *testing.T) {
	p := &stubProvider{responses: []string{`<action type="install_pack" pack="booking"/>`}}
	s := newTestSession(t, p)
	s.executor = executorFunc(func(context.Context, []parser.BuilderAction) ([]string, error) {
		return nil, errors.New("backend down")
	})

	_, err := s.Send(context.Background(), "install the booking pack", SendOptions{})
	require.NoError(t, err)

	_, err = s.ConfirmActions(context.Background())
	require.Error(t, err)
	assert.Len(t, s.PendingActions(), 1, "failed batch stays staged for retry")
}

func TestUpdateElementStaleSelectorSignalsFailure(t *testing.T) {
	p := &stubProvider{}
	s := newTestSession(t, p)
	s.SetDocument("<html><body><p>text</p></body></html>", "template")

	assert.True(t, s.UpdateElement("p", dom.Text("updated")))
	assert.False(t, s.UpdateElement("#gone", dom.Text("nope")))
}

func TestEmptyResponseSurfacesDistinctError(t *testing.T) {
	p := &stubProvider{}
	s := newTestSession(t, p)

	_, err := s.Send(context.Background(), "do something", SendOptions{})
	require.ErrorIs(t, err, backend.ErrEmptyResponse)
}

func TestStyleTagResponseCreatesOverrideProposal(t *testing.T) {
	p := &stubProvider{responses: []string{`Done: <style selector=".cta" property="color" value="red"/>`}}
	s := newTestSession(t, p)
	s.SetDocument("<html><head></head><body><a class=\"cta\">Go</a></body></html>", "template")

	result, err := s.Send(context.Background(), "make the cta red", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, classify.KindStyles, result.Proposal.Kind)

	doc, err := s.Approve()
	require.NoError(t, err)
	assert.Contains(t, doc, `.cta { color: red !important; }`)
	assert.True(t, strings.Contains(doc, `<style id="pagewright-overrides">`))
}

// executorFunc adapts a function to the actions.Executor interface.
type executorFunc func(context.Context, []parser.BuilderAction) ([]string, error)

func (f executorFunc) Execute(ctx context.Context, acts []parser.BuilderAction) ([]string, error) {
	return f(ctx, acts)
}
