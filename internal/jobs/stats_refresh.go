package jobs

import (
	"context"
	"log"
	"time"

	"attendhq/internal/analytics"
	"attendhq/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// StatsRefresher periodically recomputes the current month's statistics for
// every organization so the cache stays warm between writes.
type StatsRefresher struct {
	scheduler    gocron.Scheduler
	analyticsSvc *analytics.Service
	orgRepo      repositories.OrganizationRepository
}

func NewStatsRefresher(analyticsSvc *analytics.Service, orgRepo repositories.OrganizationRepository) (*StatsRefresher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	sr := &StatsRefresher{
		scheduler:    scheduler,
		analyticsSvc: analyticsSvc,
		orgRepo:      orgRepo,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(sr.refreshCurrentMonthStats, context.Background()),
		gocron.WithName("monthly-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return sr, nil
}

func (sr *StatsRefresher) Start() {
	log.Printf("Starting background stats refresher")
	sr.scheduler.Start()
}

func (sr *StatsRefresher) Stop() error {
	log.Printf("Stopping background stats refresher")
	return sr.scheduler.Shutdown()
}

func (sr *StatsRefresher) refreshCurrentMonthStats(ctx context.Context) error {
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	// Paged walk over all organizations; a failure for one organization
	// does not stop the rest.
	const pageSize = 200
	offset := 0
	refreshed := 0
	for {
		orgs, err := sr.orgRepo.List(ctx, pageSize, offset)
		if err != nil {
			log.Printf("stats refresh: failed to list organizations: %v", err)
			return err
		}
		if len(orgs) == 0 {
			break
		}

		for _, org := range orgs {
			if _, err := sr.analyticsSvc.MonthlyStats(ctx, org.ID, month, year); err != nil {
				log.Printf("stats refresh failed for org %s: %v", org.ID.String(), err)
				continue
			}
			refreshed++
		}
		offset += pageSize
	}

	log.Printf("Refreshed monthly stats for %d organizations", refreshed)
	return nil
}
