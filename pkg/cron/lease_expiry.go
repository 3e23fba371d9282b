package cron

import (
	"log"
	"time"

	"tink_backend/internal/model"
	"tink_backend/pkg/database"
	"tink_backend/pkg/email"

	"github.com/robfig/cron/v3"
)

func InitLeaseExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		checkExpiringLeases()
	})

	if err != nil {
		log.Printf("Could not initialize lease expiry cron: %v", err)
		return
	}

	c.Start()
}

func checkExpiringLeases() {
	log.Println("Checking for expiring leases...")

	warningDays := []int{30, 7}

	for _, days := range warningDays {
		var leases []model.Lease
		targetDate := time.Now().AddDate(0, 0, days).Format("2006-01-02")

		err := database.GetDB().
			Where("DATE(end_date) = ? AND is_active = ?", targetDate, true).
			Preload("Tenant").
			Preload("Property").
			Preload("Property.User").
			Find(&leases).Error

		if err != nil {
			log.Printf("Error fetching expiring leases: %v", err)
			continue
		}

		log.Printf("Found %d leases expiring in %d days", len(leases), days)

		for _, lease := range leases {
			if email.GlobalEmailService == nil {
				continue
			}

			err := email.GlobalEmailService.SendLeaseExpiryWarningEmail(
				lease.Property.User.Email,
				email.LeaseExpiryWarningData{
					LandlordName: lease.Property.User.GetFullName(),
					TenantName:   lease.Tenant.FullName,
					PropertyName: lease.Property.Name,
					EndDate:      lease.EndDate,
					DaysLeft:     days,
				},
			)
			if err != nil {
				log.Printf("Error sending lease expiry warning for lease %d: %v", lease.ID, err)
			} else {
				log.Printf("Sent lease expiry warning for lease %d expiring in %d days", lease.ID, days)
			}
		}
	}
}
