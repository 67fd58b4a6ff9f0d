package decision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/policy"
	"github.com/viant/sfxbot/service/dao"
	smemory "github.com/viant/sfxbot/service/dao/submission/memory"
	"github.com/viant/sfxbot/service/expiry"
	"github.com/viant/sfxbot/service/input"
	"github.com/viant/sfxbot/service/intake"
	qmemory "github.com/viant/sfxbot/service/messaging/memory"
	"github.com/viant/sfxbot/service/notifier"
	"github.com/viant/sfxbot/service/platform"
	pmemory "github.com/viant/sfxbot/service/platform/memory"
)

const (
	moderationChannel = "moderation"
	auditChannel      = "audit"
	deciderRole       = "sfx-mod"
)

type fixture struct {
	messenger *pmemory.Messenger
	dao       *smemory.Service
	inputs    *input.Registry
	outbox    *qmemory.Queue[notifier.Notification]
	intake    *intake.Service
	collector *Collector
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	messenger := pmemory.NewMessenger(moderationChannel, auditChannel)
	store := smemory.New()
	inputs := input.New()
	outbox := qmemory.NewQueue[notifier.Notification](qmemory.DefaultConfig())
	notify := notifier.New(messenger, auditChannel, outbox)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = notify.Dispatch(ctx) }()
	return &fixture{
		messenger: messenger,
		dao:       store,
		inputs:    inputs,
		outbox:    outbox,
		intake:    intake.New(messenger, store, moderationChannel, nil),
		collector: New(messenger, store, inputs, policy.New(deciderRole), notify, timeout),
	}
}

func (f *fixture) submit(t *testing.T, name string) *submission.Submission {
	sub, err := f.intake.Submit(context.Background(), &intake.Request{
		Attachment:  &submission.Attachment{URL: "https://cdn/" + name + ".mp3", ContentType: "audio/mpeg", Size: 2 * 1024 * 1024},
		DisplayName: name,
		SubmitterID: "42",
	})
	require.NoError(t, err)
	return sub
}

func press(sub *submission.Submission, action submission.Action, userID string, roles ...string) *platform.Press {
	return &platform.Press{
		ControlID: action.ControlID(sub.ID),
		User:      &platform.User{ID: userID, Name: "mod-" + userID, Roles: roles},
		ChannelID: sub.ChannelID,
		MessageID: sub.PostID,
	}
}

type result struct {
	outcome   *submission.Outcome
	err       error
	responder *pmemory.Responder
}

func (f *fixture) handleAsync(p *platform.Press) chan *result {
	ret := make(chan *result, 1)
	responder := pmemory.NewResponder()
	go func() {
		outcome, err := f.collector.Handle(context.Background(), p, responder)
		ret <- &result{outcome: outcome, err: err, responder: responder}
	}()
	return ret
}

func (f *fixture) reply(t *testing.T, channelID, authorID, content string) {
	require.Eventually(t, func() bool {
		return f.inputs.Offer(&input.Message{ChannelID: channelID, AuthorID: authorID, Content: content})
	}, time.Second, time.Millisecond)
}

func TestCollector_AcceptScenario(t *testing.T) {
	f := newFixture(t, time.Second)
	sub := f.submit(t, "Boing")

	done := f.handleAsync(press(sub, submission.ActionAccept, "7", deciderRole))
	require.Eventually(t, func() bool { return f.inputs.Len() == 1 }, time.Second, time.Millisecond)
	// another author must not consume the window
	assert.False(t, f.inputs.Offer(&input.Message{ChannelID: moderationChannel, AuthorID: "99", Content: "hijack"}))
	f.reply(t, moderationChannel, "7", "Boing")

	res := <-done
	require.NoError(t, res.err)
	require.NotNil(t, res.outcome)
	assert.Equal(t, submission.OutcomeAccepted, res.outcome.Kind)
	assert.Equal(t, "Boing", res.outcome.Payload)
	assert.Equal(t, "7", res.outcome.DeciderID)

	replies := res.responder.Replies()
	require.Len(t, replies, 2)
	assert.Equal(t, "Please provide the name of the sound effect:", replies[0].Content)
	assert.True(t, replies[0].Private)
	assert.Equal(t, "SFX request accepted. The user has been informed.", replies[1].Content)

	audit := f.messenger.Posts(auditChannel)
	require.Len(t, audit, 1)
	embed := audit[0].Embeds[0]
	assert.Equal(t, 0x00FF00, embed.Color)
	assert.Equal(t, "SFX Name", embed.Fields[0].Name)
	assert.Equal(t, "Boing", embed.Fields[0].Value)
	assert.Equal(t, "Accepted by mod-7", embed.Footer)

	assert.False(t, f.messenger.Message(sub.PostID).HasControls())
	stored, err := f.dao.Load(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusAccepted, stored.Status)

	require.Eventually(t, func() bool { return len(f.messenger.DirectMessages()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "42", f.messenger.DirectMessages()[0].UserID)
	assert.Equal(t, 1, f.messenger.DirectMessageAttempts())
}

func TestCollector_Deny(t *testing.T) {
	f := newFixture(t, time.Second)
	sub := f.submit(t, "Boing")

	done := f.handleAsync(press(sub, submission.ActionDeny, "7", deciderRole))
	f.reply(t, moderationChannel, "7", "  too loud ")
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, submission.OutcomeDenied, res.outcome.Kind)
	assert.Equal(t, "too loud", res.outcome.Payload)
	assert.Equal(t, "Please provide a reason for denying this SFX:", res.responder.Replies()[0].Content)

	audit := f.messenger.Posts(auditChannel)
	require.Len(t, audit, 1)
	assert.Equal(t, 0xFF0000, audit[0].Embeds[0].Color)
	require.Eventually(t, func() bool { return len(f.messenger.DirectMessages()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "Your SFX request has been denied for the following reason: too loud", f.messenger.DirectMessages()[0].Content)
}

func TestCollector_PermissionDenied(t *testing.T) {
	f := newFixture(t, time.Second)
	sub := f.submit(t, "Boing")
	edits := f.messenger.Edits()

	res := <-f.handleAsync(press(sub, submission.ActionAccept, "8", "member"))
	assert.ErrorIs(t, res.err, ErrPermissionDenied)
	assert.True(t, IsExpected(res.err))
	assert.Equal(t, "You do not have permission to use this button.", res.responder.Last())
	assert.True(t, res.responder.Replies()[0].Private)

	stored, _ := f.dao.Load(context.Background(), sub.ID)
	assert.False(t, stored.IsClaimed())
	assert.Equal(t, 0, f.inputs.Len())
	assert.Equal(t, edits, f.messenger.Edits())
	assert.True(t, f.messenger.Message(sub.PostID).HasControls())
}

func TestCollector_PolicyFromContext(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	sub := f.submit(t, "Boing")
	ctx := policy.WithPolicy(context.Background(), policy.New("trusted"))
	responder := pmemory.NewResponder()
	_, err := f.collector.Handle(ctx, press(sub, submission.ActionAccept, "7", deciderRole), responder)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCollector_Timeout(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	sub := f.submit(t, "Boing")

	res := <-f.handleAsync(press(sub, submission.ActionAccept, "7", deciderRole))
	assert.ErrorIs(t, res.err, input.ErrTimeout)
	assert.Nil(t, res.outcome)
	assert.Equal(t, "No name was provided. Please try again.", res.responder.Last())

	assert.Empty(t, f.messenger.Posts(auditChannel))
	assert.True(t, f.messenger.Message(sub.PostID).HasControls(), "controls stay usable")
	assert.Equal(t, 0, f.inputs.Len())
	stored, _ := f.dao.Load(context.Background(), sub.ID)
	assert.Equal(t, submission.StatusPending, stored.Status)
	assert.False(t, stored.IsClaimed(), "claim released")

	// retry succeeds with another decider
	done := f.handleAsync(press(sub, submission.ActionDeny, "9", deciderRole))
	f.reply(t, moderationChannel, "9", "duplicate")
	retry := <-done
	require.NoError(t, retry.err)
	assert.Equal(t, submission.OutcomeDenied, retry.outcome.Kind)
}

func TestCollector_EmptyPayload(t *testing.T) {
	f := newFixture(t, time.Second)
	sub := f.submit(t, "Boing")
	done := f.handleAsync(press(sub, submission.ActionDeny, "7", deciderRole))
	f.reply(t, moderationChannel, "7", "   ")
	res := <-done
	assert.ErrorIs(t, res.err, ErrEmptyPayload)
	assert.Equal(t, "No reason was provided. Please try again.", res.responder.Last())
	assert.Empty(t, f.messenger.Posts(auditChannel))
}

func TestCollector_ConcurrentPresses(t *testing.T) {
	f := newFixture(t, 200*time.Millisecond)
	sub := f.submit(t, "Boing")

	var wg sync.WaitGroup
	results := make([]*result, 2)
	presses := []*platform.Press{
		press(sub, submission.ActionAccept, "7", deciderRole),
		press(sub, submission.ActionDeny, "9", deciderRole),
	}
	for i, p := range presses {
		wg.Add(1)
		go func(i int, p *platform.Press) {
			defer wg.Done()
			results[i] = <-f.handleAsync(p)
		}(i, p)
	}
	// both deciders answer; only the claim holder is listening
	go func() {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			f.inputs.Offer(&input.Message{ChannelID: moderationChannel, AuthorID: "7", Content: "Boing"})
			f.inputs.Offer(&input.Message{ChannelID: moderationChannel, AuthorID: "9", Content: "nope"})
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	var outcomes, losers int
	for _, res := range results {
		switch {
		case res.err == nil:
			outcomes++
		case errors.Is(res.err, dao.ErrClaimed), errors.Is(res.err, dao.ErrAlreadyDecided):
			losers++
			assert.NotEmpty(t, res.responder.Last())
		}
	}
	assert.Equal(t, 1, outcomes)
	assert.Equal(t, 1, losers)
	assert.Len(t, f.messenger.Posts(auditChannel), 1, "one audit post per submission")
}

func TestCollector_AlreadyDecided(t *testing.T) {
	f := newFixture(t, time.Second)
	sub := f.submit(t, "Boing")
	done := f.handleAsync(press(sub, submission.ActionAccept, "7", deciderRole))
	f.reply(t, moderationChannel, "7", "Boing")
	require.NoError(t, (<-done).err)

	late := <-f.handleAsync(press(sub, submission.ActionDeny, "9", deciderRole))
	assert.ErrorIs(t, late.err, dao.ErrAlreadyDecided)
	assert.Equal(t, "This SFX request has already been decided.", late.responder.Last())
	assert.Len(t, f.messenger.Posts(auditChannel), 1)
}

func TestCollector_RecoverFromPost(t *testing.T) {
	testCases := []struct {
		description  string
		controls     []*platform.Control
		fetchErr     error
		expectErr    error
		expectName   string
		expectDMUser string
	}{
		{
			description:  "post with controls",
			controls:     []*platform.Control{{ID: "sfx:accept:lost"}},
			expectName:   "Bonk",
			expectDMUser: "42",
		},
		{
			description: "post already closed",
			expectErr:   dao.ErrAlreadyDecided,
		},
		{
			description: "post unreadable",
			fetchErr:    errors.New("timeout"),
			expectName:  "x-name",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f := newFixture(t, time.Second)
			f.messenger.Put(&platform.Message{
				ID: "legacy", ChannelID: moderationChannel,
				Content:     "New SFX Request from <@42>:\nName: Bonk",
				Attachments: []*submission.Attachment{{URL: "https://cdn/bonk.ogg"}},
				Controls:    testCase.controls,
			})
			if testCase.fetchErr != nil {
				f.messenger.FailFetch(testCase.fetchErr)
			}
			p := &platform.Press{
				ControlID: submission.ActionAccept.ControlID("lost"),
				User:      &platform.User{ID: "7", Roles: []string{deciderRole}},
				ChannelID: moderationChannel,
				MessageID: "legacy",
			}
			done := f.handleAsync(p)
			if testCase.expectErr != nil {
				res := <-done
				assert.ErrorIs(t, res.err, testCase.expectErr)
				return
			}
			f.reply(t, moderationChannel, "7", "x-name")
			res := <-done
			require.NoError(t, res.err)

			audit := f.messenger.Posts(auditChannel)
			require.Len(t, audit, 1)
			assert.Equal(t, testCase.expectName, audit[0].Embeds[0].Fields[0].Value)
			if testCase.expectDMUser != "" {
				require.Eventually(t, func() bool { return len(f.messenger.DirectMessages()) == 1 }, time.Second, time.Millisecond)
				assert.Equal(t, testCase.expectDMUser, f.messenger.DirectMessages()[0].UserID)
			}
		})
	}
}

func TestCollector_InvalidControl(t *testing.T) {
	f := newFixture(t, time.Second)
	_, err := f.collector.Handle(context.Background(), &platform.Press{ControlID: "poll:vote", User: &platform.User{ID: "7"}}, pmemory.NewResponder())
	assert.ErrorIs(t, err, submission.ErrInvalidControl)
}

func (f *fixture) putLegacyPost() *platform.Press {
	f.messenger.Put(&platform.Message{
		ID: "legacy", ChannelID: moderationChannel,
		Content:     "New SFX Request from <@42>:\nName: Bonk",
		Attachments: []*submission.Attachment{{URL: "https://cdn/bonk.ogg"}},
		Controls:    []*platform.Control{{ID: "sfx:accept:lost"}, {ID: "sfx:deny:lost"}},
	})
	return &platform.Press{
		ControlID: submission.ActionAccept.ControlID("lost"),
		User:      &platform.User{ID: "7", Roles: []string{deciderRole}},
		ChannelID: moderationChannel,
		MessageID: "legacy",
	}
}

func TestCollector_UnreadablePostTimeoutKeepsControls(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	p := f.putLegacyPost()
	f.messenger.FailFetch(errors.New("timeout"))

	res := <-f.handleAsync(p)
	assert.ErrorIs(t, res.err, input.ErrTimeout)

	stored, err := f.dao.Load(context.Background(), "lost")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusPending, stored.Status)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.True(t, stored.Degraded)

	sweeper := expiry.New(f.dao, notifier.New(f.messenger, auditChannel, f.outbox), expiry.Config{TTL: 7 * 24 * time.Hour, Retention: 24 * time.Hour})
	expired, _, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.True(t, f.messenger.Message("legacy").HasControls(), "controls stay usable")
}

func TestCollector_UnreadablePostRefreshedOnRetry(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	p := f.putLegacyPost()
	f.messenger.FailFetch(errors.New("timeout"))
	res := <-f.handleAsync(p)
	require.ErrorIs(t, res.err, input.ErrTimeout)

	f.messenger.FailFetch(nil)
	f.collector.timeout = time.Second
	done := f.handleAsync(p)
	f.reply(t, moderationChannel, "7", "x-name")
	res = <-done
	require.NoError(t, res.err)

	audit := f.messenger.Posts(auditChannel)
	require.Len(t, audit, 1)
	assert.Equal(t, "Bonk", audit[0].Embeds[0].Fields[0].Value)
	require.Eventually(t, func() bool { return len(f.messenger.DirectMessages()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "42", f.messenger.DirectMessages()[0].UserID)

	stored, err := f.dao.Load(context.Background(), "lost")
	require.NoError(t, err)
	assert.False(t, stored.Degraded)
	assert.Equal(t, "42", stored.SubmitterID)
}
