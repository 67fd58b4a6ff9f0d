package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/dao"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
)

func pending(id, submitter string) *submission.Submission {
	return &submission.Submission{ID: id, SubmitterID: submitter, DisplayName: "Boing", Status: submission.StatusPending, CreatedAt: time.Now()}
}

func TestService_ClaimReleaseComplete(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	testCases := []struct {
		description string
		steps       func(t *testing.T, svc *Service)
	}{
		{
			description: "claim then complete",
			steps: func(t *testing.T, svc *Service) {
				claimed, err := svc.Claim(ctx, "s1", "mod1", now)
				require.NoError(t, err)
				assert.Equal(t, "mod1", claimed.ClaimedBy)

				done, err := svc.Complete(ctx, "s1", "mod1", submission.StatusAccepted, now)
				require.NoError(t, err)
				assert.Equal(t, submission.StatusAccepted, done.Status)
				assert.Equal(t, "mod1", done.DecidedBy)
				assert.False(t, done.IsClaimed())
			},
		},
		{
			description: "second claim rejected",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Claim(ctx, "s1", "mod1", now)
				require.NoError(t, err)
				_, err = svc.Claim(ctx, "s1", "mod2", now)
				assert.ErrorIs(t, err, dao.ErrClaimed)
			},
		},
		{
			description: "release allows reclaim",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Claim(ctx, "s1", "mod1", now)
				require.NoError(t, err)
				assert.ErrorIs(t, svc.Release(ctx, "s1", "mod2"), dao.ErrNotClaimed)
				require.NoError(t, svc.Release(ctx, "s1", "mod1"))
				_, err = svc.Claim(ctx, "s1", "mod2", now)
				assert.NoError(t, err)
			},
		},
		{
			description: "complete without claim rejected",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Complete(ctx, "s1", "mod1", submission.StatusDenied, now)
				assert.ErrorIs(t, err, dao.ErrNotClaimed)
			},
		},
		{
			description: "terminal is final",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Claim(ctx, "s1", "mod1", now)
				require.NoError(t, err)
				_, err = svc.Complete(ctx, "s1", "mod1", submission.StatusDenied, now)
				require.NoError(t, err)
				_, err = svc.Claim(ctx, "s1", "mod2", now)
				assert.ErrorIs(t, err, dao.ErrAlreadyDecided)
				_, err = svc.Expire(ctx, "s1", now)
				assert.ErrorIs(t, err, dao.ErrAlreadyDecided)
			},
		},
		{
			description: "expire skips claimed",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Claim(ctx, "s1", "mod1", now)
				require.NoError(t, err)
				_, err = svc.Expire(ctx, "s1", now)
				assert.ErrorIs(t, err, dao.ErrClaimed)
				require.NoError(t, svc.Release(ctx, "s1", "mod1"))
				expired, err := svc.Expire(ctx, "s1", now)
				require.NoError(t, err)
				assert.Equal(t, submission.StatusExpired, expired.Status)
			},
		},
		{
			description: "non terminal complete rejected",
			steps: func(t *testing.T, svc *Service) {
				_, err := svc.Complete(ctx, "s1", "mod1", submission.StatusPending, now)
				assert.Error(t, err)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			svc := New()
			require.NoError(t, svc.Create(ctx, pending("s1", "user1")))
			testCase.steps(t, svc)
		})
	}
}

func TestService_ConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Create(ctx, pending("s1", "user1")))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, decider := range []string{"accepting-mod", "denying-mod"} {
		wg.Add(1)
		go func(decider string) {
			defer wg.Done()
			_, err := svc.Claim(ctx, "s1", decider, time.Now())
			results <- err
		}(decider)
	}
	wg.Wait()
	close(results)

	var succeeded, claimed int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, dao.ErrClaimed):
			claimed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, claimed)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := New()
	require.NoError(t, svc.Create(ctx, pending("s1", "user1")))
	require.NoError(t, svc.Create(ctx, pending("s2", "user2")))
	_, err := svc.Expire(ctx, "s2", time.Now())
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pendingOnly, err := svc.List(ctx, dao.NewParameter(dsubmission.ParamStatus, string(submission.StatusPending)))
	require.NoError(t, err)
	require.Len(t, pendingOnly, 1)
	assert.Equal(t, "s1", pendingOnly[0].ID)

	bySubmitter, err := svc.List(ctx, dao.NewParameter(dsubmission.ParamSubmitter, "user1", "user2"))
	require.NoError(t, err)
	assert.Len(t, bySubmitter, 2)

	_, err = svc.List(ctx, dao.NewParameter("color", "red"))
	assert.Error(t, err)
}
