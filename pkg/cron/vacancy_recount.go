package cron

import (
	"log"

	"tink_backend/internal/model"
	"tink_backend/pkg/database"

	"github.com/robfig/cron/v3"
)

// InitVacancyRecountCron reconciles the cached room counters on properties
// against the rooms table every night. Normal mutations keep them in sync,
// this catches drift from manual database edits.
func InitVacancyRecountCron() {
	c := cron.New()

	_, err := c.AddFunc("0 1 * * *", func() {
		recountAllVacancies()
	})

	if err != nil {
		log.Printf("Could not initialize vacancy recount cron: %v", err)
		return
	}

	c.Start()
}

func recountAllVacancies() {
	log.Println("Recounting property vacancies...")

	var properties []model.Property
	if err := database.GetDB().Find(&properties).Error; err != nil {
		log.Printf("Error fetching properties: %v", err)
		return
	}

	for i := range properties {
		if err := properties[i].RecountVacancy(database.GetDB()); err != nil {
			log.Printf("Error recounting vacancy for property %d: %v", properties[i].ID, err)
		}
	}

	log.Printf("Recounted vacancy for %d properties", len(properties))
}
