package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// RatingJob periodically recomputes the cached leaderboard positions
type RatingJob struct {
	db       *gorm.DB
	interval time.Duration
	stopChan chan struct{}
}

// NewRatingJob creates a new rating recompute job
func NewRatingJob(db *gorm.DB, interval time.Duration) *RatingJob {
	return &RatingJob{
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the recompute loop
func (rj *RatingJob) Start() {
	log.Printf("[RatingJob] Starting rating job (interval: %v)", rj.interval)

	ticker := time.NewTicker(rj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rj.Recompute()
		case <-rj.stopChan:
			log.Println("[RatingJob] Stopping rating job")
			return
		}
	}
}

// Stop stops the recompute loop
func (rj *RatingJob) Stop() {
	close(rj.stopChan)
}

// Recompute rewrites gdp_rating_position and capacity_rating_position
// from the current balances. Window functions keep it one statement per
// rating; a failure leaves the previous positions in place.
func (rj *RatingJob) Recompute() {
	err := rj.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE users SET gdp_rating_position = ranked.position
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY game_balance DESC, created_at) AS position
				FROM users WHERE is_active = true
			) AS ranked
			WHERE users.id = ranked.id
		`).Error; err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE users SET capacity_rating_position = ranked.position
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY total_capacity DESC, created_at) AS position
				FROM users WHERE is_active = true
			) AS ranked
			WHERE users.id = ranked.id
		`).Error
	})
	if err != nil {
		log.Printf("[RatingJob] Error recomputing ratings: %v", err)
		return
	}

	var total int64
	if err := rj.db.Model(&models.User{}).Where("is_active = ?", true).Count(&total).Error; err == nil {
		log.Printf("[RatingJob] Ratings recomputed for %d users", total)
	}
}
