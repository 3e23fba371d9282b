package cron

import (
	"log"
	"sync"
	"time"

	"tink_backend/internal/model"
	"tink_backend/pkg/database"

	"github.com/robfig/cron/v3"
)

var (
	lastRunTime time.Time
	mutex       sync.Mutex
)

// InitApplicationStatsCron refreshes the days_pending counter on pending
// applications once a day, so the pipeline board can sort by staleness
// without computing it per request.
func InitApplicationStatsCron() {
	c := cron.New()

	_, err := c.AddFunc("30 0 * * *", func() {
		mutex.Lock()
		defer mutex.Unlock()

		if time.Since(lastRunTime) < 23*time.Hour {
			log.Printf("Application stats already refreshed today, skipping...")
			return
		}

		refreshDaysPending()
		lastRunTime = time.Now()
	})

	if err != nil {
		log.Printf("Could not initialize application stats cron: %v", err)
		return
	}

	c.Start()
	log.Printf("Application stats cron initialized successfully")
}

func refreshDaysPending() {
	log.Println("Refreshing days_pending on applications...")

	var apps []model.Application
	err := database.GetDB().
		Where("status = ?", model.ApplicationStatusPending).
		Find(&apps).Error
	if err != nil {
		log.Printf("Error fetching pending applications: %v", err)
		return
	}

	for _, app := range apps {
		days := int(time.Since(app.CreatedAt).Hours() / 24)
		if days == app.DaysPending {
			continue
		}
		if err := database.GetDB().Model(&app).
			Update("days_pending", days).Error; err != nil {
			log.Printf("Error updating days_pending for application %d: %v", app.ID, err)
		}
	}

	log.Printf("Refreshed days_pending for %d applications", len(apps))
}
