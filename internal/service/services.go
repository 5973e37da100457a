package service

import (
	"github.com/deppfellow/newsletter/internal/lib/job"
	"github.com/deppfellow/newsletter/internal/repository"
	"github.com/deppfellow/newsletter/internal/server"
)

type Services struct {
	Auth          *AuthService
	Subscriptions *SubscriptionService
	Newsletters   *NewsletterService
	Job           *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	// A nil *JobService must not end up inside a non-nil interface.
	var (
		welcome WelcomeEnqueuer
		queue   IssueEnqueuer
	)
	if s.Job != nil {
		welcome = s.Job
		queue = s.Job
	}

	return &Services{
		Auth:          NewAuthService(repos.Users, s.Metrics),
		Subscriptions: NewSubscriptionService(repos.Subscriptions, s.Email, welcome, s.Metrics, s.Config.Server.BaseURL),
		Newsletters:   NewNewsletterService(repos.Subscriptions, s.Email, queue, s.Metrics, s.Config.Newsletter.Delivery),
		Job:           s.Job,
	}, nil
}
