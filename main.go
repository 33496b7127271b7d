package main

import (
	"fmt"
	"log"
	"time"

	"teamtrack/internal/attendance"
	"teamtrack/internal/config"
	"teamtrack/internal/database"
	"teamtrack/internal/notify"
	"teamtrack/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	var pub notify.Publisher = notify.Noop{}
	if cfg.Notify.URL != "" {
		p, err := notify.NewPublisher(cfg.Notify.URL, cfg.Notify.Exchange)
		if err != nil {
			log.Fatalf("init notify publisher: %v", err)
		}
		defer p.Close()
		pub = p
	}

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatalf("load attendance timezone: %v", err)
	}
	sweeper := attendance.NewSweeper(db, loc)
	go runSweepLoop(sweeper, cfg.Attendance.SweepIntervalMin)

	r := router.SetupRouter(cfg, db, sweeper, pub)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// runSweepLoop periodically force-closes attendance shifts left open past
// midnight. The sweeper is also reachable via the admin endpoint.
func runSweepLoop(sweeper *attendance.Sweeper, intervalMin int) {
	ticker := time.NewTicker(time.Duration(intervalMin) * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		summary, err := sweeper.Run()
		if err != nil {
			log.Printf("attendance sweep: %v", err)
			continue
		}
		if summary.AutoEndedCount > 0 || len(summary.Failures) > 0 {
			log.Printf("attendance sweep: auto-ended %d, failures %v",
				summary.AutoEndedCount, summary.Failures)
		}
	}
}
