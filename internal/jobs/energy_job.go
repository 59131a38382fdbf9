package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
	"tycoon-backend/internal/services"
)

// EnergyJob restores tap energy toward the limit and prunes expired boosts
type EnergyJob struct {
	db          *gorm.DB
	boosts      *services.BoostService
	energyLimit int
	regenAmount int
	interval    time.Duration
	stopChan    chan struct{}
}

// NewEnergyJob creates a new energy regeneration job
func NewEnergyJob(db *gorm.DB, boosts *services.BoostService, energyLimit, regenAmount int, interval time.Duration) *EnergyJob {
	return &EnergyJob{
		db:          db,
		boosts:      boosts,
		energyLimit: energyLimit,
		regenAmount: regenAmount,
		stopChan:    make(chan struct{}),
		interval:    interval,
	}
}

// Start begins the regeneration loop
func (ej *EnergyJob) Start() {
	log.Printf("[EnergyJob] Starting energy job (interval: %v, +%d per tick)", ej.interval, ej.regenAmount)

	ticker := time.NewTicker(ej.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ej.tick()
		case <-ej.stopChan:
			log.Println("[EnergyJob] Stopping energy job")
			return
		}
	}
}

// Stop stops the regeneration loop
func (ej *EnergyJob) Stop() {
	close(ej.stopChan)
}

func (ej *EnergyJob) tick() {
	result := ej.db.Model(&models.User{}).
		Where("energy < ?", ej.energyLimit).
		Update("energy", gorm.Expr(
			"CASE WHEN energy + ? > ? THEN ? ELSE energy + ? END",
			ej.regenAmount, ej.energyLimit, ej.energyLimit, ej.regenAmount,
		))
	if result.Error != nil {
		log.Printf("[EnergyJob] Error restoring energy: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[EnergyJob] Energy restored for %d users", result.RowsAffected)
	}

	pruned, err := ej.boosts.PruneExpired()
	if err != nil {
		log.Printf("[EnergyJob] Error pruning boosts: %v", err)
	} else if pruned > 0 {
		log.Printf("[EnergyJob] Pruned %d expired boosts", pruned)
	}
}
