package services

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
	"auction-engine/pkg/utils"
)

// CronScheduler persists start/end transitions as jobs and polls for due
// ones. When leader election is configured only the leader executes jobs,
// so horizontally scaled instances do not fire the same transition twice.
type CronScheduler struct {
	cron       *cron.Cron
	jobs       domain.SchedulerRepository
	auctioneer *Auctioneer
	leader     domain.LeaderElection
	instanceID string
	log        logger.Logger
}

func NewCronScheduler(
	jobs domain.SchedulerRepository,
	auctioneer *Auctioneer,
	leader domain.LeaderElection,
	instanceID string,
	log logger.Logger,
) *CronScheduler {
	return &CronScheduler{
		cron:       cron.New(cron.WithSeconds()),
		jobs:       jobs,
		auctioneer: auctioneer,
		leader:     leader,
		instanceID: instanceID,
		log:        log,
	}
}

func (s *CronScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting transition scheduler", "instance_id", s.instanceID)

	_, err := s.cron.AddFunc("@every 1s", func() {
		s.processDueJobs(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronScheduler) Stop() error {
	s.log.Info("Stopping transition scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronScheduler) ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error {
	return s.jobs.CreateJob(ctx, &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobStartAuction,
		RunAt:     startTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	})
}

func (s *CronScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	return s.jobs.CreateJob(ctx, &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobEndAuction,
		RunAt:     endTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	})
}

func (s *CronScheduler) RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error {
	if err := s.jobs.CancelJobsForAuction(ctx, auctionID); err != nil {
		return err
	}
	return s.ScheduleAuctionEnd(ctx, auctionID, newEndTime)
}

func (s *CronScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.jobs.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronScheduler) processDueJobs(ctx context.Context) {
	if s.leader != nil {
		isLeader, err := s.leader.IsLeader(ctx, s.instanceID)
		if err != nil {
			s.log.Error("Leader check failed", "error", err)
			return
		}
		if !isLeader {
			return
		}
	}

	jobs, err := s.jobs.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		s.log.Debug("Processing job", "job_id", job.ID, "type", string(job.JobType), "auction_id", job.AuctionID)

		switch job.JobType {
		case domain.JobStartAuction:
			err = s.auctioneer.StartAuction(ctx, job.AuctionID, time.Now())
		case domain.JobEndAuction:
			err = s.auctioneer.EndAuction(ctx, job.AuctionID, time.Now())
		default:
			s.log.Warn("Unknown job type", "job_id", job.ID, "type", string(job.JobType))
			continue
		}

		if err != nil {
			// A transition guard failure is terminal for the job (the
			// auction will never become eligible); anything else is left
			// pending for the next tick.
			if errors.Is(err, domain.ErrInvalidStatusTransition) || errors.Is(err, domain.ErrAuctionNotFound) {
				s.markJob(ctx, job.ID, domain.JobCancelled)
				continue
			}
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			continue
		}

		s.markJob(ctx, job.ID, domain.JobExecuted)
	}
}

func (s *CronScheduler) markJob(ctx context.Context, jobID string, status domain.JobStatus) {
	if err := s.jobs.UpdateJobStatus(ctx, jobID, status); err != nil {
		s.log.Error("Failed to update job status", "job_id", jobID, "status", string(status), "error", err)
	}
}
