package mysql

import (
	"context"
	"database/sql"
	"time"

	"auction-engine/internal/domain"
)

type SchedulerRepository struct {
	db *sql.DB
}

func NewSchedulerRepository(db *sql.DB) *SchedulerRepository {
	return &SchedulerRepository{db: db}
}

func (r *SchedulerRepository) CreateJob(ctx context.Context, job *domain.ScheduledJob) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO scheduled_jobs (id, auction_id, job_type, run_at, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, job.ID, job.AuctionID, string(job.JobType), job.RunAt, string(job.Status), job.CreatedAt)
	if err != nil {
		return storageErr("create job", err)
	}
	return nil
}

func (r *SchedulerRepository) GetPendingJobs(ctx context.Context, before time.Time) ([]*domain.ScheduledJob, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, auction_id, job_type, run_at, status, created_at
        FROM scheduled_jobs
        WHERE status = 'pending' AND run_at <= ?
        ORDER BY run_at ASC
    `, before)
	if err != nil {
		return nil, storageErr("get pending jobs", err)
	}
	defer rows.Close()

	var jobs []*domain.ScheduledJob
	for rows.Next() {
		var (
			job     domain.ScheduledJob
			jobType string
			status  string
		)
		if err := rows.Scan(&job.ID, &job.AuctionID, &jobType, &job.RunAt, &status, &job.CreatedAt); err != nil {
			return nil, storageErr("scan job", err)
		}
		job.JobType = domain.JobType(jobType)
		job.Status = domain.JobStatus(status)
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *SchedulerRepository) UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_jobs SET status = ? WHERE id = ?`,
		string(status), jobID)
	if err != nil {
		return storageErr("update job status", err)
	}
	return nil
}

func (r *SchedulerRepository) CancelJobsForAuction(ctx context.Context, auctionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_jobs SET status = 'cancelled' WHERE auction_id = ? AND status = 'pending'`,
		auctionID)
	if err != nil {
		return storageErr("cancel jobs", err)
	}
	return nil
}
